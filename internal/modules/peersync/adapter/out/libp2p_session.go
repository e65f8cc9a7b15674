package out

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	libp2p "github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/multiformats/go-multiaddr"

	"intervals/internal/modules/peersync/domain"
	syncout "intervals/internal/modules/peersync/port/out"
)

const (
	syncProtocol protocol.ID = "/intervals/sync/1.0.0"

	initialReconnectBackoff = 500 * time.Millisecond
	maxReconnectBackoff     = 15 * time.Second
	steadyPeerCheckInterval = 5 * time.Second
	dialTimeout             = 4 * time.Second
	replyTimeout            = 30 * time.Second
	maxMessageBytes         = 8 << 20
	eventBuffer             = 64
)

var errNoPeer = errors.New("no peer to send to")

type Libp2pTransport struct {
	logger hclog.Logger
}

func NewLibp2pTransport(logger hclog.Logger) syncout.Transport {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Libp2pTransport{logger: logger.Named("libp2p")}
}

type libp2pSession struct {
	host   host.Host
	logger hclog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	events chan domain.Event
	dirty  chan struct{}

	closeMu sync.RWMutex
	closed  bool

	// reachMu orders reachability reads with the events that report them.
	reachMu sync.Mutex

	mu        sync.RWMutex
	pinned    peer.ID
	current   peer.ID
	peerAddr  *peer.AddrInfo
	reachable bool
	activated bool
	watcher   context.CancelFunc
	stopOnce  sync.Once
}

func (t *Libp2pTransport) Start(ctx context.Context, input syncout.SessionStartInput) (syncout.Session, error) {
	decodedPriv, err := base64.StdEncoding.DecodeString(input.Identity.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decode device private key: %w", err)
	}
	privKey, err := crypto.UnmarshalEd25519PrivateKey(decodedPriv)
	if err != nil {
		return nil, fmt.Errorf("unmarshal device private key: %w", err)
	}

	var target *peer.AddrInfo
	var pinned peer.ID
	if input.Peer.Address != "" {
		addr, err := multiaddr.NewMultiaddr(input.Peer.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPeerAddress, err)
		}
		info, err := peer.AddrInfoFromP2pAddr(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPeerAddress, err)
		}
		target = info
		pinned = info.ID
	}

	listen := input.ListenAddrs
	if len(listen) == 0 {
		listen = []string{"/ip4/0.0.0.0/tcp/0", "/ip6/::/tcp/0"}
	}
	h, err := libp2p.New(
		libp2p.Identity(privKey),
		libp2p.ListenAddrStrings(listen...),
	)
	if err != nil {
		return nil, fmt.Errorf("start libp2p host: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &libp2pSession{
		host:     h,
		logger:   t.logger,
		ctx:      runCtx,
		cancel:   cancel,
		events:   make(chan domain.Event, eventBuffer),
		dirty:    make(chan struct{}, 1),
		pinned:   pinned,
		current:  pinned,
		peerAddr: target,
	}
	h.SetStreamHandler(syncProtocol, s.handleSync)
	h.Network().Notify(&network.NotifyBundle{
		ConnectedF:    func(_ network.Network, conn network.Conn) { s.observe(conn.RemotePeer()) },
		DisconnectedF: func(_ network.Network, conn network.Conn) { s.observe(conn.RemotePeer()) },
	})
	go s.monitorReachability()

	go func() {
		<-runCtx.Done()
		_ = s.Close()
	}()
	return s, nil
}

func (s *libp2pSession) Supported() bool {
	return true
}

// Activate starts dialing the paired peer, if any, and reports completion as
// an event. A listening device becomes reachable when a peer connects.
func (s *libp2pSession) Activate(_ context.Context) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}
	s.mu.Lock()
	target := s.peerAddr
	s.mu.Unlock()
	if target != nil {
		s.startPeerWatcher(*target)
	}

	s.reachMu.Lock()
	defer s.reachMu.Unlock()
	reachable := s.Reachable()
	s.mu.Lock()
	s.activated = true
	s.reachable = reachable
	s.mu.Unlock()
	s.emit(domain.ActivationCompleted(true, reachable, nil))
	return nil
}

func (s *libp2pSession) Events() <-chan domain.Event {
	return s.events
}

func (s *libp2pSession) Reachable() bool {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current == "" {
		return false
	}
	return s.host.Network().Connectedness(current) == network.Connected
}

func (s *libp2pSession) Request(ctx context.Context, payload []byte) ([]byte, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current == "" {
		return nil, errNoPeer
	}
	stream, err := s.host.NewStream(ctx, current, syncProtocol)
	if err != nil {
		return nil, fmt.Errorf("open sync stream: %w", err)
	}
	defer stream.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(deadline)
	}
	if _, err := stream.Write(payload); err != nil {
		_ = stream.Reset()
		return nil, fmt.Errorf("write sync request: %w", err)
	}
	if err := stream.CloseWrite(); err != nil {
		_ = stream.Reset()
		return nil, fmt.Errorf("close sync request: %w", err)
	}
	raw, err := io.ReadAll(io.LimitReader(stream, maxMessageBytes))
	if err != nil {
		_ = stream.Reset()
		return nil, fmt.Errorf("read sync reply: %w", err)
	}
	return raw, nil
}

func (s *libp2pSession) ListenAddrs() []string {
	return renderListenAddrs(s.host)
}

func (s *libp2pSession) Close() error {
	var stopErr error
	s.stopOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		if s.watcher != nil {
			s.watcher()
			s.watcher = nil
		}
		s.activated = false
		s.mu.Unlock()
		stopErr = s.host.Close()
		s.closeMu.Lock()
		s.closed = true
		close(s.events)
		s.closeMu.Unlock()
	})
	return stopErr
}

// handleSync reads one request, hands it to the channel and writes exactly
// one reply. A request nobody answers in time is answered false.
func (s *libp2pSession) handleSync(stream network.Stream) {
	defer stream.Close()
	remote := stream.Conn().RemotePeer()
	if !s.accepts(remote) {
		s.logger.Warn("rejecting sync stream from unpaired peer", "peer", remote.String())
		_ = stream.Reset()
		return
	}
	_ = stream.SetDeadline(time.Now().Add(replyTimeout))

	responder := domain.NewResponder(func(ok bool) error {
		_, err := stream.Write(domain.EncodeReply(ok))
		return err
	})
	payload, err := io.ReadAll(io.LimitReader(stream, maxMessageBytes))
	if err != nil {
		s.logger.Warn("read sync request failed", "peer", remote.String(), "error", err)
		_ = responder.Reply(false)
		return
	}

	message := &domain.Inbound{Payload: payload, Responder: responder}
	if !s.emit(domain.MessageReceived(message)) {
		_ = responder.Reply(false)
		return
	}
	select {
	case <-responder.Done():
	case <-time.After(replyTimeout):
		_ = responder.Reply(false)
	case <-s.ctx.Done():
		_ = responder.Reply(false)
	}
}

// accepts pins a listening device to the first peer that reaches it unless
// a pairing already names the peer.
func (s *libp2pSession) accepts(remote peer.ID) bool {
	s.mu.RLock()
	pinned, current := s.pinned, s.current
	s.mu.RUnlock()
	if pinned != "" {
		return remote == pinned
	}
	if current == remote {
		return true
	}
	if current != "" && s.host.Network().Connectedness(current) == network.Connected {
		return false
	}
	s.mu.Lock()
	s.current = remote
	s.mu.Unlock()
	return true
}

func (s *libp2pSession) observe(remote peer.ID) {
	s.mu.Lock()
	if s.pinned == "" && s.current == "" {
		s.current = remote
	}
	s.mu.Unlock()
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// monitorReachability turns connection notifications into reachability
// events. Notifications land on libp2p goroutines, so they only mark the
// state dirty here.
func (s *libp2pSession) monitorReachability() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.dirty:
		}
		s.publishReachability()
	}
}

func (s *libp2pSession) publishReachability() {
	s.reachMu.Lock()
	defer s.reachMu.Unlock()
	reachable := s.Reachable()
	s.mu.Lock()
	changed := reachable != s.reachable
	s.reachable = reachable
	activated := s.activated
	if !reachable && s.pinned == "" {
		s.current = ""
	}
	s.mu.Unlock()
	if changed && activated {
		s.emit(domain.ReachabilityChanged(reachable))
	}
}

func (s *libp2pSession) startPeerWatcher(info peer.AddrInfo) {
	s.mu.Lock()
	if s.watcher != nil {
		s.watcher()
	}
	watchCtx, cancel := context.WithCancel(s.ctx)
	s.watcher = cancel
	s.mu.Unlock()

	go func() {
		backoff := initialReconnectBackoff
		for {
			select {
			case <-watchCtx.Done():
				return
			default:
			}

			err := s.connect(watchCtx, info)
			if err == nil {
				backoff = initialReconnectBackoff
				if !s.waitUntilDisconnected(watchCtx, info.ID) {
					return
				}
				continue
			}
			s.logger.Debug("dial peer failed", "peer", info.ID.String(), "backoff", backoff, "error", err)

			select {
			case <-time.After(backoff):
			case <-watchCtx.Done():
				return
			}
			backoff *= 2
			if backoff > maxReconnectBackoff {
				backoff = maxReconnectBackoff
			}
		}
	}()
}

func (s *libp2pSession) connect(ctx context.Context, info peer.AddrInfo) error {
	s.host.Peerstore().AddAddrs(info.ID, info.Addrs, peerstore.PermanentAddrTTL)
	attemptCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	return s.host.Connect(attemptCtx, info)
}

func (s *libp2pSession) waitUntilDisconnected(ctx context.Context, id peer.ID) bool {
	ticker := time.NewTicker(steadyPeerCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if s.host.Network().Connectedness(id) != network.Connected {
				s.observe(id)
				return true
			}
		}
	}
}

// emit reports false when the session is closing and the event was dropped.
func (s *libp2pSession) emit(event domain.Event) bool {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- event:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func renderListenAddrs(h host.Host) []string {
	out := make([]string, 0, len(h.Addrs()))
	for _, addr := range h.Addrs() {
		full := addr.Encapsulate(multiaddr.StringCast("/p2p/" + h.ID().String()))
		out = append(out, full.String())
	}
	return out
}
