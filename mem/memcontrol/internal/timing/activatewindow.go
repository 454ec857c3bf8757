package timing

import "log"

// MaxWindowWidth is the widest activate window that fits in the shift
// register.
const MaxWindowWidth = 62

// ActivatesPerWindow is the number of activates a rank may perform within one
// window.
const ActivatesPerWindow = 4

// An ActivateWindow remembers when the recent activates of a rank happened.
// Bit i is set if an activate will leave the window i cycles from now. The
// number of set bits is kept alongside the register.
type ActivateWindow struct {
	width uint
	bits  uint64
	count int
}

// NewActivateWindow creates a window that is width cycles wide. A width of 0
// disables the window.
func NewActivateWindow(width int) ActivateWindow {
	if width < 0 || width > MaxWindowWidth {
		log.Panicf("tFAW window must be between 0 and %d cycles, got %d",
			MaxWindowWidth, width)
	}

	return ActivateWindow{width: uint(width)}
}

// Width returns the window width in cycles.
func (w *ActivateWindow) Width() int {
	return int(w.width)
}

// Count returns the number of activates inside the window.
func (w *ActivateWindow) Count() int {
	return w.count
}

// Blocked returns true if no more activates are allowed now.
func (w *ActivateWindow) Blocked() bool {
	return w.count >= ActivatesPerWindow
}

// Charge records an activate that counts against the window for exactly
// width cycles starting now.
func (w *ActivateWindow) Charge() {
	if w.width == 0 {
		return
	}

	mask := uint64(1) << (w.width - 1)
	if w.bits&mask != 0 {
		// Two activates in the same cycle share one slot of the register.
		return
	}

	w.bits |= mask
	w.count++
}

// Shift advances the window by one cycle.
func (w *ActivateWindow) Shift() {
	if w.bits&1 != 0 {
		w.count--
	}

	w.bits >>= 1
}
