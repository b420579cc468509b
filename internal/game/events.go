package game

// EventKind names something that happened during a frame.
type EventKind uint8

const (
	EventSpawn EventKind = iota
	EventMove
	EventRotate
	EventSoftDrop
	EventHardDrop
	EventHold
	EventLock
	EventLineClear
	EventLevelUp
	EventGameOver
	EventPause
	EventResume
	EventRestart
)

var eventNames = [...]string{
	EventSpawn:     "spawn",
	EventMove:      "move",
	EventRotate:    "rotate",
	EventSoftDrop:  "soft-drop",
	EventHardDrop:  "hard-drop",
	EventHold:      "hold",
	EventLock:      "lock",
	EventLineClear: "line-clear",
	EventLevelUp:   "level-up",
	EventGameOver:  "game-over",
	EventPause:     "pause",
	EventResume:    "resume",
	EventRestart:   "restart",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is one occurrence. Lines, Points and Rows are set for line clears.
type Event struct {
	Kind   EventKind
	Lines  int
	Points int
	Rows   []int
}

// Events collects the current frame's events. ControlSystem empties it at the
// start of every frame.
type Events struct {
	List []Event
}

func (e *Events) Emit(kind EventKind) {
	e.List = append(e.List, Event{Kind: kind})
}

// Has reports whether kind was emitted this frame.
func (e *Events) Has(kind EventKind) bool {
	for _, ev := range e.List {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

// Player turns events into sound.
type Player interface {
	Play(ev Event)
}

// Sink stores finished runs.
type Sink interface {
	Record(result Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(result Result) error

func (f SinkFunc) Record(result Result) error {
	return f(result)
}
