package in

import (
	"context"

	"intervals/internal/modules/peersync/dto"
	syncin "intervals/internal/modules/peersync/port/in"
)

type CLIHandler struct {
	usecase syncin.Usecase
}

func NewCLIHandler(usecase syncin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) DeviceInit(ctx context.Context) (dto.DeviceOutput, error) {
	return h.usecase.DeviceInit(ctx)
}

func (h CLIHandler) DeviceShow(ctx context.Context) (dto.DeviceOutput, error) {
	return h.usecase.DeviceShow(ctx)
}

func (h CLIHandler) Pair(ctx context.Context, address string) (dto.PairingOutput, error) {
	return h.usecase.Pair(ctx, dto.PairInput{Address: address})
}

func (h CLIHandler) Unpair(ctx context.Context) error {
	return h.usecase.Unpair(ctx)
}

func (h CLIHandler) Push(ctx context.Context, workoutIDs []string) (dto.PushOutput, error) {
	return h.usecase.Push(ctx, dto.PushInput{WorkoutIDs: workoutIDs})
}

func (h CLIHandler) Listen(ctx context.Context, onReady func(dto.StatusOutput), onReceived func(dto.ReceivedOutput)) error {
	return h.usecase.Listen(ctx, dto.ListenInput{OnReady: onReady, OnReceived: onReceived})
}
