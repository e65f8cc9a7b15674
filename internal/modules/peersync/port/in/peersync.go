package in

import (
	"context"

	"intervals/internal/modules/peersync/dto"
)

type Usecase interface {
	DeviceInit(ctx context.Context) (dto.DeviceOutput, error)
	DeviceShow(ctx context.Context) (dto.DeviceOutput, error)
	Pair(ctx context.Context, input dto.PairInput) (dto.PairingOutput, error)
	Unpair(ctx context.Context) error
	Push(ctx context.Context, input dto.PushInput) (dto.PushOutput, error)
	// Listen serves incoming workout collections until ctx is done.
	Listen(ctx context.Context, input dto.ListenInput) error
}
