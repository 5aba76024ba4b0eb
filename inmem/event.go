package inmem

import (
	"sync"

	"github.com/xybotsu/coinpit"
)

// EventRecorder collects published events in memory. Tests use it to
// assert on notifications.
type EventRecorder struct {
	eventsMutex sync.RWMutex
	events      []*coinpit.Event
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{
		events: make([]*coinpit.Event, 0),
	}
}

func (er *EventRecorder) Publish(event *coinpit.Event) {
	er.eventsMutex.Lock()
	defer er.eventsMutex.Unlock()

	er.events = append(er.events, event)
}

func (er *EventRecorder) Events() []*coinpit.Event {
	er.eventsMutex.RLock()
	defer er.eventsMutex.RUnlock()

	snapshot := make([]*coinpit.Event, len(er.events))
	copy(snapshot, er.events)

	return snapshot
}
