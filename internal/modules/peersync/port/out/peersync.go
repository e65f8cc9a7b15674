package out

import (
	"context"

	"intervals/internal/modules/peersync/domain"
)

// Session is a started peer session. Activation completes asynchronously:
// its outcome and every later change arrive on Events.
type Session interface {
	Supported() bool
	Activate(ctx context.Context) error
	Events() <-chan domain.Event
	Reachable() bool
	// Request sends one request body and returns the raw reply body.
	Request(ctx context.Context, payload []byte) ([]byte, error)
	ListenAddrs() []string
	Close() error
}

type Transport interface {
	Start(ctx context.Context, input SessionStartInput) (Session, error)
}

type SessionStartInput struct {
	Identity    domain.DeviceIdentity
	ListenAddrs []string
	// Peer is empty on a device that only listens.
	Peer domain.Pairing
}

// Catalog is the local workout collection as seen by the sync channel.
type Catalog interface {
	Export(ctx context.Context, ids []string) ([]domain.WorkoutRecord, error)
	Import(ctx context.Context, workouts []domain.WorkoutRecord, merge string) (int, error)
}

type DeviceStore interface {
	Init(ctx context.Context) (domain.DeviceIdentity, error)
	LoadIdentity(ctx context.Context) (domain.DeviceIdentity, error)
	Pair(ctx context.Context, address string) (domain.Pairing, error)
	LoadPairing(ctx context.Context) (domain.Pairing, error)
	Unpair(ctx context.Context) error
}
