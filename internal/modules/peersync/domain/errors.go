package domain

import "errors"

var (
	ErrSyncNotSupported   = errors.New("sync session is not supported")
	ErrSyncNotConnected   = errors.New("sync peer is not connected")
	ErrSyncEncodingFailed = errors.New("sync encoding failed")
	ErrSyncSendFailed     = errors.New("sync send failed")
	ErrAlreadyReplied     = errors.New("message already replied")
	ErrDeviceNotInit      = errors.New("device identity is not initialized")
	ErrNotPaired          = errors.New("no companion device is paired")
	ErrInvalidPeerAddress = errors.New("invalid peer address")
)

// SendFailedError carries the reason a delivered message was not accepted.
// It matches ErrSyncSendFailed with errors.Is.
type SendFailedError struct {
	Reason string
	Err    error
}

func (e *SendFailedError) Error() string {
	if e.Reason == "" {
		return ErrSyncSendFailed.Error()
	}
	return ErrSyncSendFailed.Error() + ": " + e.Reason
}

func (e *SendFailedError) Is(target error) bool {
	return target == ErrSyncSendFailed
}

func (e *SendFailedError) Unwrap() error {
	return e.Err
}
