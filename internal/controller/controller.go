package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/lifenote/internal/models"
)

// ErrClosed is returned by Do after the controller has stopped.
var ErrClosed = errors.New("controller: closed")

// Repository is the note repository the controller calls into.
type Repository interface {
	Append(ctx context.Context, d models.Draft) (*models.Note, error)
	ListForYear(ctx context.Context, year int) ([]models.Note, error)
}

// waiter tracks an event dispatched through Do until it and every effect it
// caused have settled.
type waiter struct {
	pending int
	done    chan State
}

type envelope struct {
	ev Event
	w  *waiter
}

// Controller owns a State and applies events to it.
//
// Concurrency model: a single goroutine owns the state. Events arrive over a
// channel; effects run in their own goroutines and report back as events, so
// an append and a year load can be in flight at the same time. Nothing is
// cancelled once dispatched.
type Controller struct {
	repo   Repository
	year   func() int
	logger *slog.Logger
	ctx    context.Context

	events  chan envelope
	snapReq chan chan State

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithYear sets the source of the current calendar year.
func WithYear(year func() int) Option {
	return func(c *Controller) { c.year = year }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New starts a controller in the initial state. It stops when ctx is
// cancelled or Close is called.
func New(ctx context.Context, repo Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:    repo,
		year:    func() int { return time.Now().Year() },
		logger:  slog.Default(),
		ctx:     ctx,
		events:  make(chan envelope, 64),
		snapReq: make(chan chan State),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.run(Initial())
	return c
}

func (c *Controller) run(state State) {
	defer close(c.stopped)

	for {
		select {
		case <-c.stopCh:
			return

		case <-c.ctx.Done():
			return

		case env := <-c.events:
			prev := state
			next, effects := Transition(state, env.ev)
			state = next
			c.logTransition(env.ev, prev, next, effects)

			for _, eff := range effects {
				if env.w != nil {
					env.w.pending++
				}
				go c.runEffect(eff, env.w)
			}
			if env.w != nil {
				env.w.pending--
				if env.w.pending == 0 {
					env.w.done <- state.clone()
				}
			}

		case resp := <-c.snapReq:
			resp <- state.clone()
		}
	}
}

func (c *Controller) runEffect(eff Effect, w *waiter) {
	var ev Event
	switch e := eff.(type) {
	case AppendNote:
		note, err := c.repo.Append(c.ctx, e.Draft)
		if err != nil {
			ev = AppendFailed{Err: err}
		} else {
			ev = AppendSucceeded{Note: *note, Draft: e.Draft, Year: c.year()}
		}
	case LoadYear:
		notes, err := c.repo.ListForYear(c.ctx, e.Year)
		if err != nil {
			ev = YearLoadFailed{Year: e.Year, Err: err}
		} else {
			ev = YearLoaded{Year: e.Year, Notes: notes}
		}
	default:
		return
	}

	select {
	case c.events <- envelope{ev: ev, w: w}:
	case <-c.stopped:
	}
}

func (c *Controller) logTransition(ev Event, prev, next State, effects []Effect) {
	attrs := []any{
		slog.String("event", EventName(ev)),
		slog.String("mode", string(next.Mode)),
		slog.Bool("saving", next.Saving),
		slog.Bool("loading_year", next.LoadingYear),
	}
	for _, eff := range effects {
		attrs = append(attrs, slog.String("effect", eff.effectName()))
	}
	c.logger.Debug("controller: transition", attrs...)

	if next.Notice == nil || next.Notice == prev.Notice {
		return
	}
	switch next.Notice.Kind {
	case NoticeError:
		attrs := []any{slog.String("event", EventName(ev)), slog.String("notice", next.Notice.Message)}
		if err := eventErr(ev); err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		c.logger.Warn("controller: notice", attrs...)
	default:
		c.logger.Info("controller: notice", slog.String("event", EventName(ev)), slog.String("notice", next.Notice.Message))
	}
}

func eventErr(ev Event) error {
	switch e := ev.(type) {
	case AppendFailed:
		return e.Err
	case YearLoadFailed:
		return e.Err
	}
	return nil
}

// stamp fills in values the pure transition needs from the outside world.
func (c *Controller) stamp(ev Event) Event {
	if e, ok := ev.(SelectRange); ok && e.Year == 0 {
		e.Year = c.year()
		return e
	}
	return ev
}

// Send dispatches ev without waiting for its outcome.
func (c *Controller) Send(ev Event) {
	if c.closed.Load() {
		return
	}
	select {
	case c.events <- envelope{ev: c.stamp(ev)}:
	case <-c.stopped:
	}
}

// Do dispatches ev and waits until it, and every effect it triggered
// (including follow-up refreshes), has been applied. It returns the state at
// that point.
func (c *Controller) Do(ctx context.Context, ev Event) (State, error) {
	if c.closed.Load() {
		return State{}, ErrClosed
	}
	w := &waiter{pending: 1, done: make(chan State, 1)}
	select {
	case c.events <- envelope{ev: c.stamp(ev), w: w}:
	case <-c.stopped:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	select {
	case s := <-w.done:
		return s, nil
	case <-c.stopped:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	resp := make(chan State, 1)
	select {
	case c.snapReq <- resp:
	case <-c.stopped:
		return State{}
	}
	select {
	case s := <-resp:
		return s
	case <-c.stopped:
		return State{}
	}
}

// Close stops the event loop. Outcomes of effects still in flight are
// dropped.
func (c *Controller) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	<-c.stopped
}
