package client

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// User-facing messages.
const (
	MsgLoadFailed      = "Failed to load todos, check your network connection"
	MsgOperationFailed = "Operation failed, please try again"
	MsgCreateFailed    = "Failed to add todo, please try again"
	MsgCreated         = "Todo added successfully!"
	MsgCompleted       = "Todo completed!"
	MsgReopened        = "Todo marked as active"
	MsgDeleted         = "Todo deleted successfully!"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("controller already started")

// Options tunes controller timing. Zero values take the defaults; a negative
// Floor disables the busy floor.
type Options struct {
	Floor          time.Duration
	NotifyDelay    time.Duration
	ToastDuration  time.Duration
	HealthInterval time.Duration
	Logger         types.Logger
}

const (
	DefaultNotifyDelay    = 100 * time.Millisecond
	DefaultToastDuration  = 3000 * time.Millisecond
	DefaultHealthInterval = 30 * time.Second
)

func (o Options) withDefaults() Options {
	switch {
	case o.Floor == 0:
		o.Floor = DefaultFloor
	case o.Floor < 0:
		o.Floor = 0
	}
	if o.NotifyDelay <= 0 {
		o.NotifyDelay = DefaultNotifyDelay
	}
	if o.ToastDuration <= 0 {
		o.ToastDuration = DefaultToastDuration
	}
	if o.HealthInterval <= 0 {
		o.HealthInterval = DefaultHealthInterval
	}
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
	return o
}

// Controller orchestrates Backend calls and reconciles their results into a
// Store.
type Controller struct {
	backend Backend
	store   *Store
	opts    Options
	logger  types.Logger
	fence   *fence
	probes  singleflight.Group
	toastID atomic.Uint64

	mu       sync.Mutex
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewController creates a controller over backend.
func NewController(backend Backend, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		backend: backend,
		store:   NewStore(),
		opts:    opts,
		logger:  opts.Logger,
		fence:   newFence(),
	}
}

// Store returns the state container.
func (c *Controller) Store() *Store {
	return c.store
}

// Start begins polling health every HealthInterval until Stop, then loads the
// collection and probes the server concurrently. It returns the load error,
// if any; the poller runs either way.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.stopChan != nil {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.stopChan = make(chan struct{})
	c.doneChan = make(chan struct{})
	go c.poll(c.stopChan, c.doneChan)
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		return c.Refresh(ctx)
	})
	g.Go(func() error {
		c.CheckHealth(ctx)
		return nil
	})
	return g.Wait()
}

func (c *Controller) poll(stop <-chan struct{}, done chan<- struct{}) {
	ticker := time.NewTicker(c.opts.HealthInterval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), c.opts.HealthInterval)
			c.CheckHealth(ctx)
			cancel()
		}
	}
}

// Stop ends health polling and waits for the poller to exit.
// It is a no-op before Start.
func (c *Controller) Stop() {
	c.mu.Lock()
	stop, done := c.stopChan, c.doneChan
	c.mu.Unlock()
	if stop == nil {
		return
	}
	c.stopOnce.Do(func() {
		close(stop)
	})
	<-done
}

// CheckHealth probes the server and records the connection status.
// Overlapping probes share one request.
func (c *Controller) CheckHealth(ctx context.Context) ConnectionStatus {
	val, _, _ := c.probes.Do("health", func() (any, error) {
		status := ConnectionConnected
		if err := c.backend.Health(ctx); err != nil {
			c.logger.Warn("Health check failed", "error", err)
			status = ConnectionDisconnected
		}
		c.store.update(Urgent, func(st *State) {
			st.Connection = status
		})
		return status, nil
	})
	return val.(ConnectionStatus)
}

// Refresh replaces the collection with the server's full list. The active
// filter is applied locally, so the server is always asked for every todo.
func (c *Controller) Refresh(ctx context.Context) error {
	c.clearError()
	c.store.beginBusy()
	defer c.store.endBusy()

	seq := c.fence.next("list")
	todos, err := c.backend.List(ctx, domain.StatusAll)
	if err != nil {
		c.fail("Failed to fetch todos", MsgLoadFailed, err)
		return err
	}
	if !c.fence.current("list", seq) {
		return nil
	}
	c.store.update(Transition, func(st *State) {
		st.Todos = todos
	})
	return nil
}

// CreateTodo validates title, creates it on the server and prepends the
// result. The success toast follows after NotifyDelay.
func (c *Controller) CreateTodo(ctx context.Context, title string) (*domain.Todo, error) {
	c.clearError()

	normalized, err := domain.NormalizeTitle(title)
	if err != nil {
		c.store.update(Urgent, func(st *State) {
			st.Error = err.Error()
		})
		return nil, err
	}

	c.store.update(Urgent, func(st *State) {
		st.AddingTodo = true
	})
	defer c.store.update(Urgent, func(st *State) {
		st.AddingTodo = false
	})

	return RunWithFloor(ctx, c.opts.Floor, func(ctx context.Context) (*domain.Todo, error) {
		created, err := c.backend.Create(ctx, normalized)
		if err != nil {
			c.fail("Failed to create todo", MsgCreateFailed, err)
			c.notify(NotificationError, MsgCreateFailed)
			return nil, err
		}

		c.supersedeList()
		c.store.update(Transition, func(st *State) {
			todos := make([]domain.Todo, 0, len(st.Todos)+1)
			todos = append(todos, *created)
			st.Todos = append(todos, st.Todos...)
		})
		time.AfterFunc(c.opts.NotifyDelay, func() {
			c.notify(NotificationSuccess, MsgCreated)
		})
		return created, nil
	})
}

// ToggleTodo flips the completion state of the todo with id.
func (c *Controller) ToggleTodo(ctx context.Context, id uint) error {
	return c.runBusy(ctx, func(ctx context.Context) error {
		current, ok := c.find(id)
		if !ok {
			err := domain.ErrNotFound
			c.fail("Toggle target missing", MsgOperationFailed, err, "id", id)
			return err
		}

		key := todoKey(id)
		seq := c.fence.next(key)
		completed := !current.Completed
		updated, err := c.backend.Update(ctx, id, domain.Patch{Completed: &completed})
		if err != nil {
			c.fail("Failed to update todo", MsgOperationFailed, err, "id", id)
			return err
		}
		if !c.fence.current(key, seq) {
			return nil
		}

		c.supersedeList()
		c.store.update(Transition, func(st *State) {
			for i := range st.Todos {
				if st.Todos[i].ID == id {
					st.Todos[i] = *updated
				}
			}
		})
		if updated.Completed {
			c.notify(NotificationSuccess, MsgCompleted)
		} else {
			c.notify(NotificationSuccess, MsgReopened)
		}
		return nil
	})
}

// DeleteTodo removes the todo with id.
func (c *Controller) DeleteTodo(ctx context.Context, id uint) error {
	return c.runBusy(ctx, func(ctx context.Context) error {
		key := todoKey(id)
		seq := c.fence.next(key)
		if _, err := c.backend.Delete(ctx, id); err != nil {
			c.fail("Failed to delete todo", MsgOperationFailed, err, "id", id)
			return err
		}
		if !c.fence.current(key, seq) {
			return nil
		}

		c.supersedeList()
		c.store.update(Transition, func(st *State) {
			kept := make([]domain.Todo, 0, len(st.Todos))
			for _, t := range st.Todos {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			st.Todos = kept
		})
		c.notify(NotificationSuccess, MsgDeleted)
		return nil
	})
}

// ClearCompleted removes every completed todo.
func (c *Controller) ClearCompleted(ctx context.Context) error {
	return c.runBusy(ctx, func(ctx context.Context) error {
		seq := c.fence.next("bulk")
		msg, err := c.backend.DeleteCompleted(ctx)
		if err != nil {
			c.fail("Failed to clear completed todos", MsgOperationFailed, err)
			return err
		}
		if !c.fence.current("bulk", seq) {
			return nil
		}

		c.supersedeList()
		c.store.update(Transition, func(st *State) {
			st.Todos = domain.Filter(st.Todos, domain.StatusActive)
		})
		c.notify(NotificationSuccess, msg)
		return nil
	})
}

// ClearAll removes every todo.
func (c *Controller) ClearAll(ctx context.Context) error {
	return c.runBusy(ctx, func(ctx context.Context) error {
		seq := c.fence.next("bulk")
		msg, err := c.backend.DeleteAll(ctx)
		if err != nil {
			c.fail("Failed to clear todos", MsgOperationFailed, err)
			return err
		}
		if !c.fence.current("bulk", seq) {
			return nil
		}

		c.supersedeList()
		c.store.update(Transition, func(st *State) {
			st.Todos = make([]domain.Todo, 0)
		})
		c.notify(NotificationSuccess, msg)
		return nil
	})
}

// SetFilter changes the active filter. No request is made; selecting the
// current filter is a no-op.
func (c *Controller) SetFilter(ctx context.Context, filter domain.Status) error {
	if c.store.Snapshot().Filter == filter {
		return nil
	}
	return c.runBusy(ctx, func(context.Context) error {
		c.store.update(Transition, func(st *State) {
			st.Filter = filter
		})
		return nil
	})
}

// DismissNotification clears the current toast.
func (c *Controller) DismissNotification() {
	c.store.update(Urgent, func(st *State) {
		st.Notification = nil
	})
}

// runBusy clears the error, raises the busy flag and holds it for at least
// the floor while op runs.
func (c *Controller) runBusy(ctx context.Context, op func(ctx context.Context) error) error {
	c.clearError()
	c.store.beginBusy()
	defer c.store.endBusy()

	_, err := RunWithFloor(ctx, c.opts.Floor, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// supersedeList makes any list fetch still in flight stale, so its older
// snapshot cannot overwrite a mutation applied after it was issued.
func (c *Controller) supersedeList() {
	c.fence.next("list")
}

func (c *Controller) find(id uint) (domain.Todo, bool) {
	for _, t := range c.store.Snapshot().Todos {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Todo{}, false
}

func (c *Controller) clearError() {
	c.store.update(Urgent, func(st *State) {
		st.Error = ""
	})
}

// fail records msg for the user and logs the cause.
func (c *Controller) fail(logMsg, msg string, err error, args ...any) {
	c.logger.WithError(err).Error(logMsg, args...)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && !errors.Is(err, ErrTransport) {
		msg = apiErr.Message
	}
	c.store.update(Urgent, func(st *State) {
		st.Error = msg
	})
}

// notify shows a toast and schedules its dismissal. A newer toast is not
// cleared by an older one's timer.
func (c *Controller) notify(kind NotificationKind, msg string) {
	id := c.toastID.Add(1)
	c.store.update(Urgent, func(st *State) {
		st.Notification = &Notification{ID: id, Kind: kind, Message: msg}
	})
	time.AfterFunc(c.opts.ToastDuration, func() {
		c.store.update(Urgent, func(st *State) {
			if st.Notification != nil && st.Notification.ID == id {
				st.Notification = nil
			}
		})
	})
}

func todoKey(id uint) string {
	return "todo:" + strconv.FormatUint(uint64(id), 10)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)             {}
func (nopLogger) Info(string, ...any)              {}
func (nopLogger) Warn(string, ...any)              {}
func (nopLogger) Error(string, ...any)             {}
func (l nopLogger) With(...any) types.Logger       { return l }
func (l nopLogger) WithModule(string) types.Logger { return l }
func (l nopLogger) WithError(error) types.Logger   { return l }
