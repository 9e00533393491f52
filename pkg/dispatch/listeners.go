package dispatch

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/notifkit/notifkit/pkg/logger"
	"github.com/notifkit/notifkit/pkg/notification"
)

// Listener receives terminal results. Implementations are invoked off the
// drain path on a dedicated goroutine; a panic in one listener is recovered
// and does not suppress the others.
type Listener interface {
	HandleResult(res notification.Result)
}

// ListenerFunc adapts a plain function to the Listener interface.
//
// Function values have no identity, so a ListenerFunc registration can only be
// removed through the handle returned by AddListener, never by RemoveListener.
type ListenerFunc func(res notification.Result)

// HandleResult implements Listener.
func (f ListenerFunc) HandleResult(res notification.Result) { f(res) }

// listenerSet holds registered listeners with set semantics: registering a
// listener that compares equal to an existing one is a no-op.
type listenerSet struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]Listener
	logger *slog.Logger
}

func newListenerSet(log *slog.Logger) *listenerSet {
	return &listenerSet{
		subs:   make(map[uint64]Listener),
		logger: log,
	}
}

// add registers l and returns an idempotent unsubscribe handle. A duplicate
// of an already registered comparable listener is not added again; the
// returned handle removes the original registration.
func (s *listenerSet) add(l Listener) func() {
	if l == nil {
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.find(l)
	if !ok {
		id = s.nextID
		s.nextID++
		s.subs[id] = l
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// remove drops the registration equal to l. Uncomparable listeners (such as
// ListenerFunc) are skipped; they are only removable via their handle.
func (s *listenerSet) remove(l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.find(l); ok {
		delete(s.subs, id)
	}
}

// find must be called with the lock held.
func (s *listenerSet) find(l Listener) (uint64, bool) {
	if !reflect.TypeOf(l).Comparable() {
		return 0, false
	}
	for id, existing := range s.subs {
		if reflect.TypeOf(existing).Comparable() && existing == l {
			return id, true
		}
	}
	return 0, false
}

func (s *listenerSet) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.subs)
}

// notify schedules delivery of res to every registered listener. It returns
// immediately; the fan-out runs on its own goroutine so a slow or panicking
// listener never holds up the caller.
func (s *listenerSet) notify(res notification.Result) {
	s.mu.RLock()
	snapshot := make([]Listener, 0, len(s.subs))
	for _, l := range s.subs {
		snapshot = append(snapshot, l)
	}
	s.mu.RUnlock()

	if len(snapshot) == 0 {
		return
	}

	go func() {
		for _, l := range snapshot {
			s.invoke(l, res)
		}
	}()
}

func (s *listenerSet) invoke(l Listener, res notification.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("listener panicked",
				logger.NotificationID(res.NotificationID),
				slog.Any("panic", r))
		}
	}()
	l.HandleResult(res)
}
