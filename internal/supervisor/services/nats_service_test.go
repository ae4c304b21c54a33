// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockBroker is a test double for EmbeddedBroker. The stopped channel
// stands in for the real server's shutdown latch.
type mockBroker struct {
	running       atomic.Bool
	shutdownErr   error
	shutdownCount atomic.Int32
	stopped       chan struct{}
	stopOnce      atomic.Bool
}

func newMockBroker(running bool) *mockBroker {
	b := &mockBroker{stopped: make(chan struct{})}
	b.running.Store(running)
	return b
}

func (m *mockBroker) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	m.die()
	return m.shutdownErr
}

func (m *mockBroker) IsRunning() bool {
	return m.running.Load()
}

func (m *mockBroker) WaitForShutdown() {
	<-m.stopped
}

// die simulates the server stopping, whether crashed or shut down.
func (m *mockBroker) die() {
	if m.stopOnce.CompareAndSwap(false, true) {
		m.running.Store(false)
		close(m.stopped)
	}
}

func TestEmbeddedNATSService_Interface(t *testing.T) {
	var _ suture.Service = (*EmbeddedNATSService)(nil)
}

func TestNewEmbeddedNATSService_DefaultTimeout(t *testing.T) {
	svc := NewEmbeddedNATSService(newMockBroker(true), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %v", svc.shutdownTimeout)
	}
}

func TestEmbeddedNATSService_Serve(t *testing.T) {
	t.Run("fails fast when the server is not running", func(t *testing.T) {
		svc := NewEmbeddedNATSService(newMockBroker(false), time.Second)

		err := svc.Serve(context.Background())
		if err == nil {
			t.Fatal("expected error for a dead server, got nil")
		}
	})

	t.Run("shuts down on context cancellation", func(t *testing.T) {
		broker := newMockBroker(true)
		svc := NewEmbeddedNATSService(broker, time.Second)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if broker.shutdownCount.Load() != 1 {
			t.Errorf("expected 1 Shutdown call, got %d", broker.shutdownCount.Load())
		}
	})

	t.Run("reports unexpected server death", func(t *testing.T) {
		broker := newMockBroker(true)
		svc := NewEmbeddedNATSService(broker, time.Second)

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(context.Background())
		}()

		time.Sleep(20 * time.Millisecond)
		broker.die()

		select {
		case err := <-errCh:
			if err == nil || !strings.Contains(err.Error(), "unexpectedly") {
				t.Errorf("expected unexpected-stop error, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after server death")
		}

		if broker.shutdownCount.Load() != 0 {
			t.Error("Shutdown should not be called when the server died on its own")
		}
	})

	t.Run("propagates shutdown failure", func(t *testing.T) {
		shutdownErr := errors.New("drain failed")
		broker := newMockBroker(true)
		broker.shutdownErr = shutdownErr
		svc := NewEmbeddedNATSService(broker, time.Second)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, shutdownErr) {
				t.Errorf("expected shutdown error, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return")
		}
	})
}

func TestEmbeddedNATSService_String(t *testing.T) {
	svc := NewEmbeddedNATSService(newMockBroker(true), time.Second)
	if svc.String() != "embedded-nats" {
		t.Errorf("expected 'embedded-nats', got %q", svc.String())
	}
}
