package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

type countingSweep struct{ runs chan struct{} }

func (s *countingSweep) Execute(context.Context) (int, error) {
	s.runs <- struct{}{}
	return 0, nil
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewScheduler("every five minutes", &countingSweep{}, time.Second, logger); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSchedulerRunsSweep(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweep := &countingSweep{runs: make(chan struct{}, 4)}

	s, err := NewScheduler("@every 1s", sweep, time.Second, logger)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-sweep.runs:
	case <-time.After(3 * time.Second):
		t.Fatal("sweep never ran")
	}
}
