package usecase

import (
	"context"

	"intervals/internal/modules/peersync/domain"
	"intervals/internal/modules/peersync/dto"
	syncin "intervals/internal/modules/peersync/port/in"
	"intervals/internal/modules/peersync/service"
)

type Interactor struct {
	svc *service.SyncService
}

func NewInteractor(svc *service.SyncService) syncin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) DeviceInit(ctx context.Context) (dto.DeviceOutput, error) {
	if _, err := i.svc.InitDevice(ctx); err != nil {
		return dto.DeviceOutput{}, err
	}
	return i.DeviceShow(ctx)
}

func (i *Interactor) DeviceShow(ctx context.Context) (dto.DeviceOutput, error) {
	identity, pairing, paired, err := i.svc.Device(ctx)
	if err != nil {
		return dto.DeviceOutput{}, err
	}
	out := dto.DeviceOutput{
		PeerID:      identity.PeerID,
		CreatedAt:   identity.CreatedAt,
		Paired:      paired,
		ListenAddrs: i.svc.ListenAddrs(),
	}
	if paired {
		out.PairedPeerID = pairing.PeerID
		out.PairedAddress = pairing.Address
	}
	return out, nil
}

func (i *Interactor) Pair(ctx context.Context, input dto.PairInput) (dto.PairingOutput, error) {
	pairing, err := i.svc.Pair(ctx, input.Address)
	if err != nil {
		return dto.PairingOutput{}, err
	}
	return dto.PairingOutput{PeerID: pairing.PeerID, Address: pairing.Address, PairedAt: pairing.PairedAt}, nil
}

func (i *Interactor) Unpair(ctx context.Context) error {
	return i.svc.Unpair(ctx)
}

func (i *Interactor) Push(ctx context.Context, input dto.PushInput) (dto.PushOutput, error) {
	sent, status, err := i.svc.Push(ctx, input.WorkoutIDs)
	if err != nil {
		return dto.PushOutput{Status: toStatusOutput(status)}, err
	}
	return dto.PushOutput{Sent: sent, Status: toStatusOutput(status)}, nil
}

func (i *Interactor) Listen(ctx context.Context, input dto.ListenInput) error {
	var ready func(domain.Status)
	if input.OnReady != nil {
		ready = func(status domain.Status) { input.OnReady(toStatusOutput(status)) }
	}
	var received func([]domain.WorkoutRecord)
	if input.OnReceived != nil {
		received = func(workouts []domain.WorkoutRecord) {
			out := dto.ReceivedOutput{Workouts: make([]dto.ReceivedWorkout, 0, len(workouts))}
			for _, workout := range workouts {
				out.Workouts = append(out.Workouts, dto.ReceivedWorkout{ID: workout.ID, Name: workout.Name, IntervalCount: len(workout.Intervals)})
			}
			input.OnReceived(out)
		}
	}
	return i.svc.Listen(ctx, ready, received)
}

func toStatusOutput(status domain.Status) dto.StatusOutput {
	return dto.StatusOutput{
		State:          string(status.State),
		Reachable:      status.Reachable,
		LastSyncAt:     status.LastSyncAt,
		ListenAddrs:    status.ListenAddrs,
		Sent:           status.Counters.Sent,
		SendFailures:   status.Counters.SendFailures,
		Received:       status.Counters.Received,
		DecodeErrors:   status.Counters.DecodeErrors,
		ImportFailures: status.Counters.ImportFailures,
		Reactivations:  status.Counters.Reactivations,
	}
}
