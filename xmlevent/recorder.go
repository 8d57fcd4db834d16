package xmlevent

import "fmt"

// Kind identifies the shape of a recorded Event.
type Kind byte

const (
	KindStartObject Kind = iota
	KindEndObject
	KindStartList
	KindEndList
	KindScalar
)

// String returns a stable, debug-friendly name for the kind.
func (k Kind) String() string {
	switch k {
	case KindStartObject:
		return "StartObject"
	case KindEndObject:
		return "EndObject"
	case KindStartList:
		return "StartList"
	case KindEndList:
		return "EndList"
	case KindScalar:
		return "Scalar"
	default:
		return "Unknown"
	}
}

// Event is a flattened, comparable recording of one Sink call. It exists
// so tests (and simple consumers that don't want to implement Sink
// themselves) can capture and compare whole event sequences, e.g. with
// go-cmp, instead of hand-rolling a driver each time.
type Event struct {
	Kind  Kind
	Name  string
	Value string
}

// String renders the event the way a test failure diff benefits from.
func (e Event) String() string {
	switch e.Kind {
	case KindScalar:
		return fmt.Sprintf("Scalar(%q=%q)", e.Name, e.Value)
	case KindStartObject, KindStartList:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Name)
	default:
		return e.Kind.String()
	}
}

// Recorder is a Sink that appends every call to Events in order. It never
// rejects a value; use it to capture a driver's output for comparison or
// for replaying into another Sink with Replay.
type Recorder struct {
	Events []Event
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) StartObject(name string) error {
	r.Events = append(r.Events, Event{Kind: KindStartObject, Name: name})
	return nil
}

func (r *Recorder) EndObject() error {
	r.Events = append(r.Events, Event{Kind: KindEndObject})
	return nil
}

func (r *Recorder) StartList(name string) error {
	r.Events = append(r.Events, Event{Kind: KindStartList, Name: name})
	return nil
}

func (r *Recorder) EndList() error {
	r.Events = append(r.Events, Event{Kind: KindEndList})
	return nil
}

func (r *Recorder) RenderScalar(name, value string) error {
	r.Events = append(r.Events, Event{Kind: KindScalar, Name: name, Value: value})
	return nil
}

// Replay drives dst with the recorded events, in order, stopping at the
// first error dst returns.
func (r *Recorder) Replay(dst Sink) error {
	for _, ev := range r.Events {
		var err error
		switch ev.Kind {
		case KindStartObject:
			err = dst.StartObject(ev.Name)
		case KindEndObject:
			err = dst.EndObject()
		case KindStartList:
			err = dst.StartList(ev.Name)
		case KindEndList:
			err = dst.EndList()
		case KindScalar:
			err = dst.RenderScalar(ev.Name, ev.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
