package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

type IntervalRecord struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

// WorkoutRecord is the wire shape of one workout.
type WorkoutRecord struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Intervals []IntervalRecord `json:"intervals"`
}

// Request carries the JSON workout array as bytes, which encoding/json
// renders as base64.
type Request struct {
	Workouts []byte `json:"workouts"`
}

type Reply struct {
	Reply *bool `json:"reply"`
}

var errMissingWorkouts = errors.New("request has no workouts payload")

func EncodeRequest(workouts []WorkoutRecord) ([]byte, error) {
	if workouts == nil {
		workouts = []WorkoutRecord{}
	}
	inner, err := json.Marshal(workouts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyncEncodingFailed, err)
	}
	payload, err := json.Marshal(Request{Workouts: inner})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyncEncodingFailed, err)
	}
	return payload, nil
}

// DecodeRequest reads a request body. A missing workouts key, a payload that
// is not a workout array, or a workout without an id is an error.
func DecodeRequest(payload []byte) ([]WorkoutRecord, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if req.Workouts == nil {
		return nil, errMissingWorkouts
	}
	workouts := []WorkoutRecord{}
	if err := json.Unmarshal(req.Workouts, &workouts); err != nil {
		return nil, fmt.Errorf("decode workouts: %w", err)
	}
	for i, workout := range workouts {
		if workout.ID == "" {
			return nil, fmt.Errorf("decode workouts: workout %d has no id", i)
		}
	}
	return workouts, nil
}

func EncodeReply(ok bool) []byte {
	raw, _ := json.Marshal(Reply{Reply: &ok})
	return raw
}

// DecodeReply reads a reply body. A body without a boolean reply key is
// malformed.
func DecodeReply(payload []byte) (bool, error) {
	var reply Reply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return false, fmt.Errorf("malformed reply: %w", err)
	}
	if reply.Reply == nil {
		return false, errors.New("malformed reply: missing reply key")
	}
	return *reply.Reply, nil
}

// Inbound is a received request waiting for its reply.
type Inbound struct {
	Payload   []byte
	Responder *Responder
}

// Responder sends at most one reply. Later calls return ErrAlreadyReplied.
type Responder struct {
	send func(ok bool) error
	once sync.Once
	done chan struct{}
	ok   bool
	err  error
}

func NewResponder(send func(ok bool) error) *Responder {
	return &Responder{send: send, done: make(chan struct{})}
}

func (r *Responder) Reply(ok bool) error {
	replied := false
	r.once.Do(func() {
		replied = true
		r.ok = ok
		r.err = r.send(ok)
		close(r.done)
	})
	if !replied {
		return ErrAlreadyReplied
	}
	return r.err
}

// Done is closed once a reply has been sent.
func (r *Responder) Done() <-chan struct{} {
	return r.done
}

// Replied reports whether a reply was sent and its value.
func (r *Responder) Replied() (bool, bool) {
	select {
	case <-r.done:
		return true, r.ok
	default:
		return false, false
	}
}
