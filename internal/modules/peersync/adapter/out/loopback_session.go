package out

import (
	"context"
	"errors"
	"sync"

	"intervals/internal/modules/peersync/domain"
	syncout "intervals/internal/modules/peersync/port/out"
)

var errLoopbackUnreachable = errors.New("loopback peer unreachable")

const loopbackEventBuffer = 64

// loopbackLink is the shared medium between the two ends of a pair.
type loopbackLink struct {
	mu     sync.Mutex
	linked bool
}

// LoopbackSession is an in-process session connected to exactly one other
// LoopbackSession. The peer is reachable while both ends are activated and
// the link is up.
type LoopbackSession struct {
	link *loopbackLink
	peer *LoopbackSession

	supported   bool
	activateErr error

	mu        sync.Mutex
	activated bool
	closed    bool
	events    chan domain.Event
	done      chan struct{}
}

type LoopbackOption func(*LoopbackSession)

// LoopbackUnsupported makes Supported report false.
func LoopbackUnsupported() LoopbackOption {
	return func(s *LoopbackSession) { s.supported = false }
}

// LoopbackActivationError makes every activation complete with err.
func LoopbackActivationError(err error) LoopbackOption {
	return func(s *LoopbackSession) { s.activateErr = err }
}

// NewLoopbackPair returns two connected ends. Options apply to the first.
func NewLoopbackPair(opts ...LoopbackOption) (*LoopbackSession, *LoopbackSession) {
	link := &loopbackLink{linked: true}
	a := newLoopbackSession(link)
	b := newLoopbackSession(link)
	a.peer, b.peer = b, a
	for _, opt := range opts {
		opt(a)
	}
	return a, b
}

func newLoopbackSession(link *loopbackLink) *LoopbackSession {
	return &LoopbackSession{
		link:      link,
		supported: true,
		events:    make(chan domain.Event, loopbackEventBuffer),
		done:      make(chan struct{}),
	}
}

var _ syncout.Session = (*LoopbackSession)(nil)

func (s *LoopbackSession) Supported() bool {
	return s.supported
}

func (s *LoopbackSession) Activate(_ context.Context) error {
	if s.activateErr != nil {
		s.emit(domain.ActivationCompleted(false, false, s.activateErr))
		return nil
	}
	s.mu.Lock()
	s.activated = true
	s.mu.Unlock()
	reachable := s.Reachable()
	s.emit(domain.ActivationCompleted(true, reachable, nil))
	if reachable {
		s.peer.emit(domain.ReachabilityChanged(true))
	}
	return nil
}

// Deactivate simulates the platform tearing the session down.
func (s *LoopbackSession) Deactivate() {
	s.mu.Lock()
	s.activated = false
	s.mu.Unlock()
	s.emit(domain.Deactivated())
	s.peer.emit(domain.ReachabilityChanged(false))
}

// SetLinked brings the link between both ends up or down.
func (s *LoopbackSession) SetLinked(linked bool) {
	s.link.mu.Lock()
	changed := s.link.linked != linked
	s.link.linked = linked
	s.link.mu.Unlock()
	if !changed {
		return
	}
	s.emit(domain.ReachabilityChanged(s.Reachable()))
	s.peer.emit(domain.ReachabilityChanged(s.peer.Reachable()))
}

func (s *LoopbackSession) Events() <-chan domain.Event {
	return s.events
}

func (s *LoopbackSession) Reachable() bool {
	s.link.mu.Lock()
	linked := s.link.linked
	s.link.mu.Unlock()
	return linked && s.isActive() && s.peer.isActive()
}

func (s *LoopbackSession) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activated && !s.closed
}

func (s *LoopbackSession) Request(ctx context.Context, payload []byte) ([]byte, error) {
	if !s.Reachable() {
		return nil, errLoopbackUnreachable
	}
	replies := make(chan []byte, 1)
	responder := domain.NewResponder(func(ok bool) error {
		replies <- domain.EncodeReply(ok)
		return nil
	})
	message := &domain.Inbound{Payload: append([]byte(nil), payload...), Responder: responder}
	select {
	case s.peer.events <- domain.MessageReceived(message):
	case <-s.peer.done:
		return nil, errLoopbackUnreachable
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case raw := <-replies:
		return raw, nil
	case <-s.peer.done:
		return nil, errLoopbackUnreachable
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *LoopbackSession) ListenAddrs() []string {
	return nil
}

func (s *LoopbackSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()
	s.peer.emit(domain.ReachabilityChanged(false))
	return nil
}

func (s *LoopbackSession) emit(event domain.Event) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	select {
	case s.events <- event:
	case <-s.done:
	}
}
