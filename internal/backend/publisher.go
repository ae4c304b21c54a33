// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build nats

package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/presage/internal/metrics"
	"github.com/tomtom215/presage/internal/weightsync"
)

// Publisher wraps a Watermill NATS publisher with resilience patterns.
// It provides circuit breaker protection and automatic reconnection
// handling, and adapts the weight sync hook signature for the backend
// tier.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	config         PublisherConfig
	logger         watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a resilient Watermill NATS publisher.
// The publisher is configured for JetStream with message ID tracking for
// deduplication.
func NewPublisher(cfg PublisherConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid publisher config: %w", err)
	}
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	// NATS connection options with reconnection handling
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
		natsgo.ErrorHandler(func(nc *natsgo.Conn, sub *natsgo.Subscription, err error) {
			logger.Error("NATS error", err, watermill.LogFields{
				"subject": sub.Subject,
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // Stream is pre-created by StreamInitializer
			TrackMsgId:    cfg.TrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{
		publisher: pub,
		config:    cfg,
		logger:    logger,
	}, nil
}

// SetCircuitBreaker configures the circuit breaker for publish operations.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) {
	p.circuitBreaker = cb
}

// Publish sends a message to the given subject with circuit breaker
// protection. The message UUID is used as Nats-Msg-Id for deduplication
// if not already set.
func (p *Publisher) Publish(ctx context.Context, subject string, msg *message.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	var err error
	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(subject, msg)
		})
	} else {
		err = p.publisher.Publish(subject, msg)
	}

	metrics.RecordNATSPublish(err)
	return err
}

// PublishSnapshot publishes the weight and KPI messages of one sync
// snapshot. The weights message is published first; the first failure
// aborts the cycle so the breaker sees every broken publish.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap weightsync.Snapshot) error {
	wm := NewWeightsMessage(snap)
	data, err := EncodeWeightsMessage(wm)
	if err != nil {
		return err
	}
	msg := message.NewMessage(wm.MessageID, data)
	msg.Metadata.Set(MetaMessageType, MessageTypeWeights)
	if err := p.Publish(ctx, p.config.WeightsSubject, msg); err != nil {
		return fmt.Errorf("publish weights snapshot: %w", err)
	}

	km := NewKPIMessage(snap)
	data, err = EncodeKPIMessage(km)
	if err != nil {
		return err
	}
	msg = message.NewMessage(km.MessageID, data)
	msg.Metadata.Set(MetaMessageType, MessageTypeKPI)
	if err := p.Publish(ctx, p.config.KPISubject, msg); err != nil {
		return fmt.Errorf("publish kpi snapshot: %w", err)
	}

	p.logger.Debug("snapshot published", watermill.LogFields{
		"profiles":   len(snap.Profiles),
		"session_id": snap.KPI.SessionID,
	})
	return nil
}

// Hook adapts the publisher to the weight sync hook signature for the
// backend tier.
func (p *Publisher) Hook() weightsync.Hook {
	return func(ctx context.Context, snap weightsync.Snapshot) error {
		return p.PublishSnapshot(ctx, snap)
	}
}

// Close gracefully shuts down the publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}

// WatermillPublisher returns the underlying Watermill publisher for
// components that require the native message.Publisher interface.
func (p *Publisher) WatermillPublisher() message.Publisher {
	return p.publisher
}
