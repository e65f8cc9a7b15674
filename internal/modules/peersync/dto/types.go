package dto

import "time"

type DeviceOutput struct {
	PeerID        string
	CreatedAt     time.Time
	Paired        bool
	PairedPeerID  string
	PairedAddress string
	ListenAddrs   []string
}

type PairInput struct {
	Address string
}

type PairingOutput struct {
	PeerID   string
	Address  string
	PairedAt time.Time
}

type PushInput struct {
	WorkoutIDs []string
}

type PushOutput struct {
	Sent   int
	Status StatusOutput
}

type ReceivedWorkout struct {
	ID            string
	Name          string
	IntervalCount int
}

type ReceivedOutput struct {
	Workouts []ReceivedWorkout
}

type ListenInput struct {
	OnReady    func(StatusOutput)
	OnReceived func(ReceivedOutput)
}

type StatusOutput struct {
	State          string
	Reachable      bool
	LastSyncAt     time.Time
	ListenAddrs    []string
	Sent           int64
	SendFailures   int64
	Received       int64
	DecodeErrors   int64
	ImportFailures int64
	Reactivations  int64
}
