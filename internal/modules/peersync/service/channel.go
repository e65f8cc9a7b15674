package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"intervals/internal/modules/peersync/domain"
	syncout "intervals/internal/modules/peersync/port/out"
	"intervals/internal/platform/clock"
	"intervals/internal/platform/observability"
)

const DefaultSendTimeout = 30 * time.Second

type ChannelOptions struct {
	SendTimeout time.Duration
	Merge       string
	Clock       clock.Clock
	Logger      hclog.Logger
	// OnReceived runs on the Run goroutine after a received batch is stored.
	OnReceived func(workouts []domain.WorkoutRecord)
}

// Channel keeps the connection state for one peer session, pushes workout
// collections to the peer and stores the collections it receives.
//
// Run owns every state transition. SendWorkouts may be called from any
// goroutine.
type Channel struct {
	session syncout.Session
	catalog syncout.Catalog
	timeout time.Duration
	merge   string
	clock   clock.Clock
	logger  hclog.Logger

	onReceived func(workouts []domain.WorkoutRecord)

	mu       sync.RWMutex
	state    domain.ConnectionState
	changed  chan struct{}
	lastSync time.Time
	counters domain.Counters
}

func NewChannel(session syncout.Session, catalog syncout.Catalog, opts ChannelOptions) *Channel {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	if opts.Merge == "" {
		opts.Merge = "upsert"
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Channel{
		session:    session,
		catalog:    catalog,
		timeout:    opts.SendTimeout,
		merge:      opts.Merge,
		clock:      opts.Clock,
		logger:     opts.Logger.Named("peersync"),
		onReceived: opts.OnReceived,
		state:      domain.StateNotConnected,
		changed:    make(chan struct{}),
	}
}

// Run activates the session and drains its events until ctx is done or the
// session closes its event stream.
func (c *Channel) Run(ctx context.Context) error {
	if !c.session.Supported() {
		c.setState(domain.StateNotConnected)
		return domain.ErrSyncNotSupported
	}
	c.activate(ctx)
	events := c.session.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				c.setState(domain.StateNotConnected)
				return nil
			}
			c.handle(ctx, event)
		}
	}
}

func (c *Channel) activate(ctx context.Context) {
	if err := c.session.Activate(ctx); err != nil {
		c.logger.Warn("session activation failed", "error", err)
		c.handle(ctx, domain.ActivationCompleted(false, false, err))
	}
}

func (c *Channel) handle(ctx context.Context, event domain.Event) {
	switch event.Kind {
	case domain.EventMessageReceived:
		c.receive(ctx, event.Message)
		return
	case domain.EventActivationCompleted:
		if event.Err != nil {
			c.logger.Warn("session activation completed with error", "error", event.Err)
		}
	}

	next := domain.Next(c.State(), event)
	c.setState(next)

	if domain.NeedsReactivation(event) {
		c.mu.Lock()
		c.counters.Reactivations++
		c.mu.Unlock()
		c.logger.Info("session deactivated, activating again")
		c.activate(ctx)
	}
}

// SendWorkouts pushes the collection to the peer and waits for its
// acknowledgement. When not connected it waits for the connection, bounded
// by ctx and the send timeout.
func (c *Channel) SendWorkouts(ctx context.Context, workouts []domain.WorkoutRecord) error {
	if !c.session.Supported() {
		return domain.ErrSyncNotSupported
	}
	sendCtx, cancel := context.WithTimeoutCause(ctx, c.timeout, fmt.Errorf("no connection within %s", c.timeout))
	defer cancel()

	if err := c.waitConnected(sendCtx); err != nil {
		c.recordSend(false, 0)
		return err
	}
	if !c.session.Reachable() {
		c.recordSend(false, 0)
		return domain.ErrSyncNotConnected
	}

	payload, err := domain.EncodeRequest(workouts)
	if err != nil {
		c.recordSend(false, 0)
		return err
	}
	raw, err := c.session.Request(sendCtx, payload)
	if err != nil {
		c.recordSend(false, 0)
		return &domain.SendFailedError{Reason: err.Error(), Err: err}
	}
	ok, err := domain.DecodeReply(raw)
	if err != nil {
		c.recordSend(false, 0)
		return &domain.SendFailedError{Reason: err.Error(), Err: err}
	}
	if !ok {
		c.recordSend(false, 0)
		return &domain.SendFailedError{Reason: "peer failed to process workouts"}
	}
	c.recordSend(true, len(workouts))
	c.logger.Info("workouts sent", "count", len(workouts))
	return nil
}

func (c *Channel) waitConnected(ctx context.Context) error {
	for {
		c.mu.RLock()
		state, changed := c.state, c.changed
		c.mu.RUnlock()
		if state == domain.StateConnected {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrSyncNotConnected, context.Cause(ctx))
		}
	}
}

// receive answers exactly once per message. A batch is acknowledged only
// after it is stored.
func (c *Channel) receive(ctx context.Context, message *domain.Inbound) {
	if message == nil || message.Responder == nil {
		return
	}
	workouts, err := domain.DecodeRequest(message.Payload)
	if err != nil {
		c.logger.Warn("received undecodable workouts", "error", err)
		c.mu.Lock()
		c.counters.DecodeErrors++
		c.mu.Unlock()
		observability.RecordSyncMessage(observability.DirectionInbound, observability.ResultFailed, 0)
		c.reply(message.Responder, false)
		return
	}
	if _, err := c.catalog.Import(ctx, workouts, c.merge); err != nil {
		c.logger.Warn("storing received workouts failed", "count", len(workouts), "error", err)
		c.mu.Lock()
		c.counters.ImportFailures++
		c.mu.Unlock()
		observability.RecordSyncMessage(observability.DirectionInbound, observability.ResultFailed, 0)
		c.reply(message.Responder, false)
		return
	}
	c.reply(message.Responder, true)

	c.mu.Lock()
	c.counters.Received++
	c.lastSync = c.clock.Now()
	c.mu.Unlock()
	observability.RecordSyncMessage(observability.DirectionInbound, observability.ResultOK, len(workouts))
	c.logger.Info("workouts received", "count", len(workouts), "merge", c.merge)
	if c.onReceived != nil {
		c.onReceived(workouts)
	}
}

func (c *Channel) reply(responder *domain.Responder, ok bool) {
	if err := responder.Reply(ok); err != nil && !errors.Is(err, domain.ErrAlreadyReplied) {
		c.logger.Warn("sending reply failed", "error", err)
	}
}

func (c *Channel) State() domain.ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Channel) Status() domain.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.Status{
		State:       c.state,
		Reachable:   c.session.Reachable(),
		LastSyncAt:  c.lastSync,
		ListenAddrs: c.session.ListenAddrs(),
		Counters:    c.counters,
	}
}

func (c *Channel) setState(next domain.ConnectionState) {
	c.mu.Lock()
	if c.state == next {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = next
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()

	observability.RecordSyncConnected(next == domain.StateConnected)
	c.logger.Debug("connection state changed", "from", string(prev), "to", string(next))
}

func (c *Channel) recordSend(ok bool, count int) {
	c.mu.Lock()
	if ok {
		c.counters.Sent++
		c.lastSync = c.clock.Now()
	} else {
		c.counters.SendFailures++
	}
	c.mu.Unlock()
	result := observability.ResultFailed
	if ok {
		result = observability.ResultOK
	}
	observability.RecordSyncMessage(observability.DirectionOutbound, result, count)
}
