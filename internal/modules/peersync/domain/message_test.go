package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"intervals/internal/modules/peersync/domain"
)

func sampleRecords() []domain.WorkoutRecord {
	return []domain.WorkoutRecord{{
		ID:   "w1",
		Name: "Intervals",
		Intervals: []domain.IntervalRecord{
			{ID: "i1", Type: "warmup", Duration: 300},
			{ID: "i2", Type: "highIntensity", Duration: 30},
		},
	}}
}

func TestRequestWireShape(t *testing.T) {
	t.Parallel()
	payload, err := domain.EncodeRequest(sampleRecords())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("request should only carry workouts, got keys %v", raw)
	}
	if _, ok := raw["workouts"]; !ok {
		t.Fatalf("missing workouts key: %s", payload)
	}
	workouts, err := domain.DecodeRequest(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(workouts) != 1 || workouts[0].ID != "w1" || len(workouts[0].Intervals) != 2 {
		t.Fatalf("unexpected decode: %+v", workouts)
	}
}

func TestDecodeRequestRejectsBadPayloads(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"not json":        "junk",
		"missing key":     `{"other":"x"}`,
		"null workouts":   `{"workouts":null}`,
		"not an array":    `{"workouts":"eyJhIjoxfQ=="}`,
		"workout sans id": `{"workouts":"W3sibmFtZSI6Im5vIGlkIn1d"}`,
	}
	for name, body := range cases {
		if _, err := domain.DecodeRequest([]byte(body)); err == nil {
			t.Errorf("%s: expected decode error", name)
		}
	}
}

func TestReplyWireShape(t *testing.T) {
	t.Parallel()
	if got := string(domain.EncodeReply(true)); got != `{"reply":true}` {
		t.Fatalf("reply = %s", got)
	}
	ok, err := domain.DecodeReply([]byte(`{"reply":false}`))
	if err != nil || ok {
		t.Fatalf("decode false reply = %v, %v", ok, err)
	}
	if _, err := domain.DecodeReply([]byte(`{}`)); err == nil || !strings.Contains(err.Error(), "malformed") {
		t.Fatalf("missing reply key should be malformed, got %v", err)
	}
	if _, err := domain.DecodeReply([]byte(`{"reply":"yes"}`)); err == nil {
		t.Fatal("non-boolean reply should be malformed")
	}
}

func TestResponderRepliesOnce(t *testing.T) {
	t.Parallel()
	var sent []bool
	responder := domain.NewResponder(func(ok bool) error {
		sent = append(sent, ok)
		return nil
	})
	if replied, _ := responder.Replied(); replied {
		t.Fatal("fresh responder reports replied")
	}
	if err := responder.Reply(true); err != nil {
		t.Fatalf("first reply: %v", err)
	}
	if err := responder.Reply(false); !errors.Is(err, domain.ErrAlreadyReplied) {
		t.Fatalf("second reply = %v", err)
	}
	replied, value := responder.Replied()
	if !replied || !value {
		t.Fatalf("Replied() = %v, %v", replied, value)
	}
	if len(sent) != 1 || !sent[0] {
		t.Fatalf("sent = %v, want exactly [true]", sent)
	}
	select {
	case <-responder.Done():
	default:
		t.Fatal("done channel not closed")
	}
}
