package out_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	out "intervals/internal/modules/peersync/adapter/out"
	"intervals/internal/modules/peersync/domain"
	syncout "intervals/internal/modules/peersync/port/out"
	"intervals/internal/modules/peersync/service"
)

type recordingCatalog struct {
	mu    sync.Mutex
	items []domain.WorkoutRecord
}

func (c *recordingCatalog) Export(context.Context, []string) ([]domain.WorkoutRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.WorkoutRecord(nil), c.items...), nil
}

func (c *recordingCatalog) Import(_ context.Context, workouts []domain.WorkoutRecord, _ string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, workouts...)
	return len(workouts), nil
}

func (c *recordingCatalog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func TestLibp2pPushReachesPairedCompanion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	_, primaryDevice := newDeviceStore(t)
	_, companionDevice := newDeviceStore(t)
	primaryID, err := primaryDevice.Init(ctx)
	if err != nil {
		t.Fatalf("init primary: %v", err)
	}
	companionID, err := companionDevice.Init(ctx)
	if err != nil {
		t.Fatalf("init companion: %v", err)
	}

	transport := out.NewLibp2pTransport(nil)
	loopbackOnly := []string{"/ip4/127.0.0.1/tcp/0"}

	companionSession, err := transport.Start(ctx, syncout.SessionStartInput{Identity: companionID, ListenAddrs: loopbackOnly})
	if err != nil {
		t.Fatalf("start companion: %v", err)
	}
	defer func() { _ = companionSession.Close() }()

	companionAddr := dialableAddr(t, companionSession.ListenAddrs())
	pairing, err := primaryDevice.Pair(ctx, companionAddr)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	primarySession, err := transport.Start(ctx, syncout.SessionStartInput{Identity: primaryID, ListenAddrs: loopbackOnly, Peer: pairing})
	if err != nil {
		t.Fatalf("start primary: %v", err)
	}
	defer func() { _ = primarySession.Close() }()

	companionStore := &recordingCatalog{}
	received := make(chan int, 4)
	companion := service.NewChannel(companionSession, companionStore, service.ChannelOptions{
		SendTimeout: 10 * time.Second,
		Merge:       "append",
		OnReceived:  func(w []domain.WorkoutRecord) { received <- len(w) },
	})
	primary := service.NewChannel(primarySession, &recordingCatalog{}, service.ChannelOptions{SendTimeout: 10 * time.Second})

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = companion.Run(runCtx) }()
	go func() { _ = primary.Run(runCtx) }()

	batch := []domain.WorkoutRecord{
		{ID: "w-1", Name: "One", Intervals: []domain.IntervalRecord{{ID: "i-1", Type: "warmup", Duration: 300}}},
		{ID: "w-2", Name: "Two", Intervals: []domain.IntervalRecord{{ID: "i-2", Type: "highIntensity", Duration: 30}}},
		{ID: "w-3", Name: "Three", Intervals: []domain.IntervalRecord{{ID: "i-3", Type: "coolDown", Duration: 300}}},
	}
	if err := primary.SendWorkouts(ctx, batch); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case n := <-received:
		if n != 3 {
			t.Fatalf("companion received %d workouts, want 3", n)
		}
	case <-ctx.Done():
		t.Fatal("companion never received the batch")
	}
	if companionStore.count() != 3 {
		t.Fatalf("companion stored %d workouts", companionStore.count())
	}

	if err := companionSession.Close(); err != nil {
		t.Fatalf("close companion: %v", err)
	}
	err = primary.SendWorkouts(ctx, batch[:1])
	if err == nil {
		t.Fatal("send to a closed companion must fail")
	}
	if !errors.Is(err, domain.ErrSyncNotConnected) && !errors.Is(err, domain.ErrSyncSendFailed) {
		t.Fatalf("unexpected error kind: %v", err)
	}
}

func dialableAddr(t *testing.T, addrs []string) string {
	t.Helper()
	for _, addr := range addrs {
		if strings.Contains(addr, "/ip4/") && strings.Contains(addr, "/tcp/") {
			return strings.Replace(addr, "/ip4/0.0.0.0/", "/ip4/127.0.0.1/", 1)
		}
	}
	t.Fatalf("no dialable listen address in %+v", addrs)
	return ""
}

func TestLibp2pLastReportedReachabilityMatchesConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	_, primaryDevice := newDeviceStore(t)
	_, companionDevice := newDeviceStore(t)
	primaryID, err := primaryDevice.Init(ctx)
	if err != nil {
		t.Fatalf("init primary: %v", err)
	}
	companionID, err := companionDevice.Init(ctx)
	if err != nil {
		t.Fatalf("init companion: %v", err)
	}
	transport := out.NewLibp2pTransport(nil)
	loopbackOnly := []string{"/ip4/127.0.0.1/tcp/0"}
	companionSession, err := transport.Start(ctx, syncout.SessionStartInput{Identity: companionID, ListenAddrs: loopbackOnly})
	if err != nil {
		t.Fatalf("start companion: %v", err)
	}
	defer func() { _ = companionSession.Close() }()
	pairing, err := primaryDevice.Pair(ctx, dialableAddr(t, companionSession.ListenAddrs()))
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	primarySession, err := transport.Start(ctx, syncout.SessionStartInput{Identity: primaryID, ListenAddrs: loopbackOnly, Peer: pairing})
	if err != nil {
		t.Fatalf("start primary: %v", err)
	}
	defer func() { _ = primarySession.Close() }()

	if err := primarySession.Activate(ctx); err != nil {
		t.Fatalf("activate: %v", err)
	}
	reported := false
	settle := time.After(time.Hour)
	for {
		select {
		case event := <-primarySession.Events():
			switch event.Kind {
			case domain.EventActivationCompleted, domain.EventReachabilityChanged:
				reported = event.Reachable
			}
			if reported && primarySession.Reachable() {
				settle = time.After(300 * time.Millisecond)
			}
		case <-settle:
			if !reported {
				t.Fatal("a stale unreachable event was reported after the peer connected")
			}
			return
		case <-ctx.Done():
			t.Fatalf("peer never reported reachable (last reported %v, reachable %v)", reported, primarySession.Reachable())
		}
	}
}
