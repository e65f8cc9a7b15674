package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"intervals/internal/modules/peersync/domain"
	syncout "intervals/internal/modules/peersync/port/out"
	"intervals/internal/platform/clock"
)

type Settings struct {
	SendTimeout time.Duration
	Merge       string
	ListenAddrs []string
}

// SyncService starts sessions for the stored device identity and runs a
// Channel over them.
type SyncService struct {
	transport syncout.Transport
	devices   syncout.DeviceStore
	catalog   syncout.Catalog
	settings  Settings
	clock     clock.Clock
	logger    hclog.Logger
}

func NewSyncService(transport syncout.Transport, devices syncout.DeviceStore, catalog syncout.Catalog, settings Settings, clk clock.Clock, logger hclog.Logger) *SyncService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SyncService{
		transport: transport,
		devices:   devices,
		catalog:   catalog,
		settings:  settings,
		clock:     clk,
		logger:    logger,
	}
}

func (s *SyncService) InitDevice(ctx context.Context) (domain.DeviceIdentity, error) {
	return s.devices.Init(ctx)
}

// Device returns the identity and, when present, the pairing.
func (s *SyncService) Device(ctx context.Context) (domain.DeviceIdentity, domain.Pairing, bool, error) {
	identity, err := s.devices.LoadIdentity(ctx)
	if err != nil {
		return domain.DeviceIdentity{}, domain.Pairing{}, false, err
	}
	pairing, err := s.devices.LoadPairing(ctx)
	if errors.Is(err, domain.ErrNotPaired) {
		return identity, domain.Pairing{}, false, nil
	}
	if err != nil {
		return domain.DeviceIdentity{}, domain.Pairing{}, false, err
	}
	return identity, pairing, true, nil
}

func (s *SyncService) ListenAddrs() []string {
	return append([]string(nil), s.settings.ListenAddrs...)
}

func (s *SyncService) Pair(ctx context.Context, address string) (domain.Pairing, error) {
	identity, err := s.devices.Init(ctx)
	if err != nil {
		return domain.Pairing{}, err
	}
	pairing, err := s.devices.Pair(ctx, address)
	if err != nil {
		return domain.Pairing{}, err
	}
	if pairing.PeerID == identity.PeerID {
		_ = s.devices.Unpair(ctx)
		return domain.Pairing{}, fmt.Errorf("%w: cannot pair a device with itself", domain.ErrInvalidPeerAddress)
	}
	s.logger.Info("companion paired", "peer", pairing.PeerID)
	return pairing, nil
}

func (s *SyncService) Unpair(ctx context.Context) error {
	return s.devices.Unpair(ctx)
}

// Push sends the selected workouts, or all of them when ids is empty, to the
// paired companion.
func (s *SyncService) Push(ctx context.Context, ids []string) (int, domain.Status, error) {
	pairing, err := s.devices.LoadPairing(ctx)
	if err != nil {
		return 0, domain.Status{}, err
	}
	workouts, err := s.catalog.Export(ctx, ids)
	if err != nil {
		return 0, domain.Status{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	channel, session, err := s.open(runCtx, pairing, nil)
	if err != nil {
		return 0, domain.Status{}, err
	}
	defer func() { _ = session.Close() }()

	runErr := make(chan error, 1)
	go func() { runErr <- channel.Run(runCtx) }()

	sendErr := channel.SendWorkouts(ctx, workouts)
	status := channel.Status()
	cancel()
	if err := <-runErr; err != nil && sendErr == nil {
		sendErr = err
	}
	if sendErr != nil {
		return 0, status, sendErr
	}
	return len(workouts), status, nil
}

// Listen runs a receiving channel until ctx is done. ready is called once
// the session is up.
func (s *SyncService) Listen(ctx context.Context, ready func(domain.Status), received func([]domain.WorkoutRecord)) error {
	pairing, err := s.devices.LoadPairing(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotPaired) {
		return err
	}
	channel, session, err := s.open(ctx, pairing, received)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()
	if ready != nil {
		ready(channel.Status())
	}
	s.logger.Info("listening for workouts", "addrs", session.ListenAddrs())
	return channel.Run(ctx)
}

func (s *SyncService) open(ctx context.Context, pairing domain.Pairing, received func([]domain.WorkoutRecord)) (*Channel, syncout.Session, error) {
	identity, err := s.devices.Init(ctx)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.transport.Start(ctx, syncout.SessionStartInput{
		Identity:    identity,
		ListenAddrs: s.settings.ListenAddrs,
		Peer:        pairing,
	})
	if err != nil {
		return nil, nil, err
	}
	channel := NewChannel(session, s.catalog, ChannelOptions{
		SendTimeout: s.settings.SendTimeout,
		Merge:       s.settings.Merge,
		Clock:       s.clock,
		Logger:      s.logger,
		OnReceived:  received,
	})
	return channel, session, nil
}
