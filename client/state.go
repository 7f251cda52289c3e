package client

import (
	"sync"

	domain "github.com/example/todo-tracker/domain/todo"
)

// ConnectionStatus is the result of the latest health probe.
type ConnectionStatus string

const (
	ConnectionLoading      ConnectionStatus = "loading"
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionDisconnected ConnectionStatus = "disconnected"
)

// NotificationKind distinguishes success and error toasts.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	ID      uint64
	Kind    NotificationKind
	Message string
}

// State is a snapshot of everything the presentation layer renders.
type State struct {
	Todos        []domain.Todo
	Filter       domain.Status
	Loading      bool
	AddingTodo   bool
	Error        string
	Connection   ConnectionStatus
	Notification *Notification
}

// Visible returns the todos selected by the active filter.
func (s State) Visible() []domain.Todo {
	return domain.Filter(s.Todos, s.Filter)
}

// Counts tallies the full collection.
func (s State) Counts() domain.Counts {
	return domain.Count(s.Todos)
}

// Priority tells listeners how urgently an update should be rendered.
type Priority int

const (
	// Urgent updates (busy flags, errors) should render immediately.
	Urgent Priority = iota
	// Transition updates (list changes) may be deferred behind urgent ones.
	Transition
)

// Listener receives a snapshot after every change.
type Listener func(s State, p Priority)

// Store holds client state and notifies subscribers of changes.
type Store struct {
	mu        sync.Mutex
	state     State
	busy      int
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store with an empty list, the all filter and an
// unknown connection.
func NewStore() *Store {
	return &Store{
		state: State{
			Todos:      make([]domain.Todo, 0),
			Filter:     domain.StatusAll,
			Connection: ConnectionLoading,
		},
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// update applies fn under the lock and notifies listeners outside it.
func (s *Store) update(p Priority, fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.copyLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap, p)
	}
}

// beginBusy marks one more list-affecting operation in flight.
func (s *Store) beginBusy() {
	s.update(Urgent, func(st *State) {
		s.busy++
		st.Loading = true
	})
}

// endBusy marks one operation finished. Loading clears when none remain.
func (s *Store) endBusy() {
	s.update(Urgent, func(st *State) {
		if s.busy > 0 {
			s.busy--
		}
		st.Loading = s.busy > 0
	})
}

func (s *Store) copyLocked() State {
	snap := s.state
	snap.Todos = make([]domain.Todo, len(s.state.Todos))
	copy(snap.Todos, s.state.Todos)
	if s.state.Notification != nil {
		n := *s.state.Notification
		snap.Notification = &n
	}
	return snap
}
