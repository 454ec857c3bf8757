package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/sarchlab/memctl/datarecording"
	"github.com/sarchlab/memctl/mem/dramdevice"
	"github.com/sarchlab/memctl/mem/memcontrol"
	"github.com/sarchlab/memctl/monitoring"
	"github.com/sarchlab/memctl/sim"
	"github.com/sarchlab/memctl/tracing"
	"github.com/spf13/cobra"
)

const controllerName = "MemCtl"

// runOptions are the workload and instrumentation settings of a run.
type runOptions struct {
	requests         int
	pattern          string
	readPercent      int
	writebackPercent int
	gap              int
	seed             int64
	freqGHz          float64

	externalDevice bool
	deviceLatency  int
	deviceCapacity int

	record      string
	traceEvents bool

	monitor     bool
	port        int
	openBrowser bool
	hold        bool
}

func defaultRunOptions() runOptions {
	return runOptions{
		requests:         10000,
		pattern:          patternRandom,
		readPercent:      70,
		writebackPercent: 10,
		gap:              20,
		seed:             1,
		freqGHz:          2,
		deviceLatency:    20,
		deviceCapacity:   32,
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a synthetic workload through the memory controller.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts, err := readRunOptions(cmd)
		if err != nil {
			return err
		}

		_, err = simulate(cmd.Context(), cfg, opts, cmd.OutOrStdout())

		return err
	},
}

func init() {
	d := defaultRunOptions()
	f := runCmd.Flags()

	addConfigFlags(runCmd)

	f.Int("requests", d.requests, "Number of requests to submit.")
	f.String("pattern", d.pattern,
		"Address pattern: random, sequential, or single-bank.")
	f.Int("read-percent", d.readPercent, "Share of reads in percent.")
	f.Int("writeback-percent", d.writebackPercent,
		"Share of writebacks in percent. The rest are writes.")
	f.Int("gap", d.gap, "System cycles between two request arrivals.")
	f.Int64("seed", d.seed, "Seed of the workload and arbitration.")
	f.Float64("freq", d.freqGHz, "System frequency in GHz for reporting.")
	f.Bool("external-device", d.externalDevice,
		"Time requests with a fixed-latency device instead of the "+
			"internal model.")
	f.Int("device-latency", d.deviceLatency,
		"Memory cycles each device transaction takes.")
	f.Int("device-capacity", d.deviceCapacity,
		"Transactions the device can hold at once.")
	f.String("record", d.record,
		"Record every controller event into NAME.sqlite3.")
	f.Bool("trace-events", d.traceEvents, "Log every event to stderr.")
	f.Bool("monitor", d.monitor, "Serve the monitoring API.")
	f.Int("port", d.port, "Port of the monitoring API. 0 picks one.")
	f.Bool("open-browser", d.openBrowser, "Open the monitor in a browser.")
	f.Bool("hold", d.hold,
		"Keep the monitor running after the simulation until interrupted.")

	rootCmd.AddCommand(runCmd)
}

func readRunOptions(cmd *cobra.Command) (runOptions, error) {
	f := cmd.Flags()
	o := defaultRunOptions()

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error

	o.requests, err = f.GetInt("requests")
	collect(err)
	o.pattern, err = f.GetString("pattern")
	collect(err)
	o.readPercent, err = f.GetInt("read-percent")
	collect(err)
	o.writebackPercent, err = f.GetInt("writeback-percent")
	collect(err)
	o.gap, err = f.GetInt("gap")
	collect(err)
	o.seed, err = f.GetInt64("seed")
	collect(err)
	o.freqGHz, err = f.GetFloat64("freq")
	collect(err)
	o.externalDevice, err = f.GetBool("external-device")
	collect(err)
	o.deviceLatency, err = f.GetInt("device-latency")
	collect(err)
	o.deviceCapacity, err = f.GetInt("device-capacity")
	collect(err)
	o.record, err = f.GetString("record")
	collect(err)
	o.traceEvents, err = f.GetBool("trace-events")
	collect(err)
	o.monitor, err = f.GetBool("monitor")
	collect(err)
	o.port, err = f.GetInt("port")
	collect(err)
	o.openBrowser, err = f.GetBool("open-browser")
	collect(err)
	o.hold, err = f.GetBool("hold")
	collect(err)

	if len(errs) > 0 {
		return o, errs[0]
	}

	if o.requests < 0 || o.gap < 0 {
		return o, fmt.Errorf("requests and gap cannot be negative")
	}

	if o.freqGHz <= 0 {
		return o, fmt.Errorf("frequency must be positive, got %g", o.freqGHz)
	}

	return o, nil
}

// runResult summarizes a finished simulation.
type runResult struct {
	submitted uint64
	responses uint64
	endTime   sim.VTime
	counter   *tracing.EventCounter
	latency   *tracing.LatencyTracer
}

// responseSink drains the controller whenever it is woken up.
type responseSink struct {
	comp     *memcontrol.Comp
	bar      *monitoring.ProgressBar
	received uint64
}

func (s *responseSink) Handle(_ sim.Event) error {
	for s.comp.IsReady() {
		s.comp.Drain()
		s.received++
		s.bar.MoveInProgressToFinished(1)
	}

	return nil
}

func simulate(
	ctx context.Context,
	cfg memcontrol.Config,
	opts runOptions,
	out io.Writer,
) (runResult, error) {
	w, err := newWorkload(cfg, opts.pattern,
		opts.readPercent, opts.writebackPercent, opts.seed)
	if err != nil {
		return runResult{}, err
	}

	engine := sim.NewSerialEngine()
	if opts.traceEvents {
		engine.AcceptHook(sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	comp := buildController(engine, cfg, opts)

	counter := tracing.NewEventCounter()
	latency := tracing.NewLatencyTracer()
	comp.AcceptHook(counter)
	comp.AcceptHook(latency)

	if opts.record != "" {
		recorder := datarecording.New(opts.record)
		defer recorder.Close()

		comp.AcceptHook(tracing.NewDBRecorder(recorder, "mem_events"))
	}

	accesses := make([]access, opts.requests)
	expected := uint64(0)
	for i := range accesses {
		accesses[i] = w.nextAccess()
		if accesses[i].accessType != memcontrol.AccessWriteback {
			expected++
		}
	}

	var monitor *monitoring.Monitor
	var bar *monitoring.ProgressBar
	if opts.monitor {
		monitor = monitoring.NewMonitor().
			WithPortNumber(opts.port).
			WithOpenBrowser(opts.openBrowser)
		monitor.RegisterEngine(engine)
		monitor.RegisterController(comp)
		monitor.RegisterEventCounter(comp.Name(), counter)

		if _, err := monitor.StartServer(); err != nil {
			return runResult{}, err
		}

		bar = monitor.CreateProgressBar("Responses", expected)
	} else {
		bar = &monitoring.ProgressBar{
			Name:      "Responses",
			StartTime: time.Now(),
			Total:     expected,
		}
	}

	bar.IncrementInProgress(expected)

	sink := &responseSink{comp: comp, bar: bar}
	comp.SetConsumer(sink)

	for i, a := range accesses {
		var handle interface{}
		if a.accessType != memcontrol.AccessWriteback {
			handle = i + 1
		}

		comp.Submit(a.addr, a.accessType, handle, sim.VTime(i*opts.gap))
	}

	if err := engine.Run(); err != nil {
		return runResult{}, err
	}

	result := runResult{
		submitted: uint64(len(accesses)),
		responses: sink.received,
		endTime:   engine.CurrentTime(),
		counter:   counter,
		latency:   latency,
	}

	report(out, cfg, opts, result)

	if monitor != nil {
		monitor.CompleteProgressBar(bar)
		waitForMonitor(ctx, monitor, opts.hold)
	}

	if result.responses != expected {
		return result, fmt.Errorf("expected %d responses, received %d",
			expected, result.responses)
	}

	return result, nil
}

func buildController(
	engine *sim.SerialEngine,
	cfg memcontrol.Config,
	opts runOptions,
) *memcontrol.Comp {
	builder := memcontrol.MakeBuilder().
		WithEngine(engine).
		WithConfig(cfg).
		WithSeed(opts.seed)

	if opts.externalDevice {
		device := dramdevice.NewFixedLatency(
			opts.deviceLatency, opts.deviceCapacity)
		builder = builder.
			WithDeviceModel(device).
			WithInternalTimingModel(false)
	}

	return builder.Build(controllerName)
}

func waitForMonitor(
	ctx context.Context,
	monitor *monitoring.Monitor,
	hold bool,
) {
	if hold {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		fmt.Fprintln(os.Stderr, "Simulation finished. Press Ctrl+C to exit.")
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), 5*time.Second)
	defer cancel()

	if err := monitor.StopServer(shutdownCtx); err != nil {
		log.Printf("stopping monitor: %v", err)
	}
}

func report(
	out io.Writer,
	cfg memcontrol.Config,
	opts runOptions,
	r runResult,
) {
	cfg.Print(out, controllerName)
	fmt.Fprintln(out)

	r.counter.Report(out)
	fmt.Fprintln(out)

	freq := sim.Freq(opts.freqGHz) * sim.GHz
	fmt.Fprintf(out, "Requests submitted: %d\n", r.submitted)
	fmt.Fprintf(out, "Responses received: %d\n", r.responses)
	fmt.Fprintf(out, "Simulated time: %d cycles (%.3f us)\n",
		r.endTime, freq.Seconds(r.endTime)*1e6)

	if r.latency.Count() > 0 {
		fmt.Fprintf(out, "Latency: avg %.2f, min %d, max %d cycles\n",
			r.latency.Average(), r.latency.Min(), r.latency.Max())
	}
}
