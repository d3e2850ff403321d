package main

import (
	"context"
	"io"
	"testing"
	"time"

	"go-pos-inventory/internal/form"

	"github.com/sirupsen/logrus"
)

func TestSweepInterval(t *testing.T) {
	tests := []struct {
		idle time.Duration
		want time.Duration
	}{
		{time.Nanosecond, time.Second},
		{0, time.Second},
		{time.Second, time.Second},
		{3 * time.Second, 1500 * time.Millisecond},
		{30 * time.Minute, 15 * time.Minute},
	}
	for _, tt := range tests {
		if got := sweepInterval(tt.idle); got != tt.want {
			t.Errorf("sweepInterval(%s) = %s, want %s", tt.idle, got, tt.want)
		}
	}
}

func TestSweepSessionsTinyIdleDoesNotPanic(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweepSessions(ctx, form.NewRegistry(), time.Nanosecond, log)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
