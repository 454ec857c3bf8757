package tracing

import (
	"github.com/sarchlab/memctl/datarecording"
	"github.com/sarchlab/memctl/mem/memcontrol"
	"github.com/sarchlab/memctl/sim"
)

type eventEntry struct {
	Time       uint64
	Controller string
	Event      string
	Bank       int
	Value      int
	RequestID  string
	Address    uint64
	Access     string
}

// DBRecorder is a hook that writes every controller event into a table.
type DBRecorder struct {
	recorder datarecording.DataRecorder
	table    string
}

// NewDBRecorder creates the table and returns a DBRecorder that fills it.
func NewDBRecorder(
	recorder datarecording.DataRecorder,
	table string,
) *DBRecorder {
	recorder.CreateTable(table, eventEntry{})

	return &DBRecorder{
		recorder: recorder,
		table:    table,
	}
}

// Func records a hook invocation.
func (r *DBRecorder) Func(ctx sim.HookCtx) {
	sample, ok := ctx.Detail.(memcontrol.Sample)
	if !ok {
		return
	}

	entry := eventEntry{
		Time:  uint64(sample.Time),
		Event: ctx.Pos.Name,
		Bank:  sample.Bank,
		Value: sample.Value,
	}

	if named, ok := ctx.Domain.(sim.Named); ok {
		entry.Controller = named.Name()
	}

	if req, ok := ctx.Item.(*memcontrol.Request); ok {
		entry.RequestID = req.ID
		entry.Address = req.Address
		entry.Access = req.Type.String()
	}

	r.recorder.InsertData(r.table, entry)
}
