package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"intervals/internal/modules/peersync/domain"
)

func TestNextActivation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		event domain.Event
		want  domain.ConnectionState
	}{
		{"activated and reachable", domain.ActivationCompleted(true, true, nil), domain.StateConnected},
		{"activated but unreachable", domain.ActivationCompleted(true, false, nil), domain.StateNotConnected},
		{"not activated", domain.ActivationCompleted(false, true, nil), domain.StateNotConnected},
		{"activation error while reachable", domain.ActivationCompleted(true, true, errors.New("boom")), domain.StateNotConnected},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			for _, from := range []domain.ConnectionState{domain.StateNotConnected, domain.StateConnected} {
				if got := domain.Next(from, tc.event); got != tc.want {
					t.Fatalf("Next(%s) = %s, want %s", from, got, tc.want)
				}
			}
		})
	}
}

func TestActivationFailureNeverConnects(t *testing.T) {
	t.Parallel()
	for i := 0; i < 8; i++ {
		reachable := i%2 == 0
		activated := i%4 < 2
		event := domain.ActivationCompleted(activated, reachable, fmt.Errorf("failure %d", i))
		if domain.Next(domain.StateConnected, event) != domain.StateNotConnected {
			t.Fatalf("failed activation produced Connected (activated=%v reachable=%v)", activated, reachable)
		}
	}
}

func TestNextReachabilityAndLifecycle(t *testing.T) {
	t.Parallel()
	if domain.Next(domain.StateNotConnected, domain.ReachabilityChanged(true)) != domain.StateConnected {
		t.Fatal("reachability gained should connect")
	}
	if domain.Next(domain.StateConnected, domain.ReachabilityChanged(false)) != domain.StateNotConnected {
		t.Fatal("reachability lost should disconnect")
	}
	if domain.Next(domain.StateConnected, domain.BecameInactive()) != domain.StateNotConnected {
		t.Fatal("inactive session should disconnect")
	}
	if domain.Next(domain.StateConnected, domain.Deactivated()) != domain.StateNotConnected {
		t.Fatal("deactivated session should disconnect")
	}
	if domain.Next(domain.StateConnected, domain.MessageReceived(nil)) != domain.StateConnected {
		t.Fatal("messages must not change the state")
	}
	if !domain.NeedsReactivation(domain.Deactivated()) || domain.NeedsReactivation(domain.BecameInactive()) {
		t.Fatal("only deactivation requires reactivation")
	}
}

func TestSendFailedErrorMatchesSentinel(t *testing.T) {
	t.Parallel()
	cause := errors.New("stream reset")
	err := fmt.Errorf("push: %w", &domain.SendFailedError{Reason: "stream reset", Err: cause})
	if !errors.Is(err, domain.ErrSyncSendFailed) {
		t.Fatal("expected ErrSyncSendFailed match")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
	var sendErr *domain.SendFailedError
	if !errors.As(err, &sendErr) || sendErr.Reason != "stream reset" {
		t.Fatalf("unexpected errors.As result: %+v", sendErr)
	}
	if errors.Is(err, domain.ErrSyncNotConnected) {
		t.Fatal("send failure must not match not connected")
	}
}
