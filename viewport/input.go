package viewport

// Event is one raw device event, multiplexed by the Input Controller into
// the small Command set spec.md §4.9 defines. The event-type enumeration
// follows the teacher's (kjkrol-gokx) pkg/gfx/events.go pattern of a
// closed set of small structs satisfying an empty marker interface,
// generalized from X11/platform events to mouse/keyboard/touch.
type Event interface{}

// MouseWheel is a scroll event at screen position (X, Y); DeltaY > 0
// zooms in, per spec.md §4.9.
type MouseWheel struct {
	DeltaY float64
	X, Y   float64
}

// MouseDrag is a middle-button (or space+left-button) drag delta in
// screen pixels.
type MouseDrag struct {
	DX, DY float64
}

// MouseMove reports the pointer's current screen position, used for the
// coordinate readout overlay (spec.md §4.8).
type MouseMove struct {
	X, Y float64
}

// KeyPress identifies one of the keys spec.md §4.9 binds: arrows, Enter,
// Shift+Enter, F, G, P, L.
type KeyPress struct {
	Key   string
	Shift bool
}

// TouchDrag is a one-finger pan gesture.
type TouchDrag struct {
	DX, DY float64
}

// TouchPinch is a two-finger pinch/zoom gesture about screen point
// (CX, CY); Factor > 1 zooms in.
type TouchPinch struct {
	Factor float64
	CX, CY float64
}

// CommandKind names the closed command set spec.md §4.9 multiplexes
// every input source into.
type CommandKind int

const (
	CommandPan CommandKind = iota
	CommandZoomAt
	CommandFit
	CommandToggleGrid
	CommandToggleMetrics
	CommandToggleLayerPanel
	CommandCoordinateUpdate
)

// Command is the result of translating one Event through the Input
// Controller. Commands execute synchronously on the main thread and
// never re-enter the renderer, per spec.md §4.9.
type Command struct {
	Kind       CommandKind
	DX, DY     float64
	X, Y       float64
	Factor     float64
}

const (
	wheelZoomIn  = 1.1
	wheelZoomOut = 0.9
	keyboardPanFraction = 0.10
)

// Translate maps one raw device event into zero or one Commands, per
// spec.md §4.9's mouse/keyboard/touch bindings. viewportW/H are needed
// for the keyboard pan-by-10%-of-viewport binding.
func Translate(ev Event, viewportW, viewportH float64) (Command, bool) {
	switch e := ev.(type) {
	case MouseWheel:
		factor := wheelZoomIn
		if e.DeltaY < 0 {
			factor = wheelZoomOut
		}
		return Command{Kind: CommandZoomAt, X: e.X, Y: e.Y, Factor: factor}, true
	case MouseDrag:
		return Command{Kind: CommandPan, DX: e.DX, DY: e.DY}, true
	case MouseMove:
		return Command{Kind: CommandCoordinateUpdate, X: e.X, Y: e.Y}, true
	case TouchDrag:
		return Command{Kind: CommandPan, DX: e.DX, DY: e.DY}, true
	case TouchPinch:
		return Command{Kind: CommandZoomAt, X: e.CX, Y: e.CY, Factor: e.Factor}, true
	case KeyPress:
		return translateKey(e, viewportW, viewportH)
	default:
		return Command{}, false
	}
}

func translateKey(e KeyPress, viewportW, viewportH float64) (Command, bool) {
	switch e.Key {
	case "ArrowUp":
		return Command{Kind: CommandPan, DX: 0, DY: keyboardPanFraction * viewportH}, true
	case "ArrowDown":
		return Command{Kind: CommandPan, DX: 0, DY: -keyboardPanFraction * viewportH}, true
	case "ArrowLeft":
		return Command{Kind: CommandPan, DX: keyboardPanFraction * viewportW, DY: 0}, true
	case "ArrowRight":
		return Command{Kind: CommandPan, DX: -keyboardPanFraction * viewportW, DY: 0}, true
	case "Enter":
		factor := wheelZoomIn
		if e.Shift {
			factor = wheelZoomOut
		}
		return Command{Kind: CommandZoomAt, X: viewportW / 2, Y: viewportH / 2, Factor: factor}, true
	case "F":
		return Command{Kind: CommandFit}, true
	case "G":
		return Command{Kind: CommandToggleGrid}, true
	case "P":
		return Command{Kind: CommandToggleMetrics}, true
	case "L":
		return Command{Kind: CommandToggleLayerPanel}, true
	default:
		return Command{}, false
	}
}
