package observability

import "context"

// MultiObserver delivers each event to every sink in order. The mochi CLI
// uses it to pair the stderr text log with a JSON event-log file; event
// emitters stay unaware of how many sinks are listening.
type MultiObserver struct {
	sinks []Observer
}

// NewMultiObserver creates a MultiObserver over the given sinks. Nil
// entries are dropped so callers can pass optionally-configured sinks
// without checking each one.
func NewMultiObserver(sinks ...Observer) *MultiObserver {
	m := &MultiObserver{sinks: make([]Observer, 0, len(sinks))}
	for _, sink := range sinks {
		if sink != nil {
			m.sinks = append(m.sinks, sink)
		}
	}
	return m
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, sink := range m.sinks {
		sink.OnEvent(ctx, event)
	}
}
