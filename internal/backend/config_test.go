// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package backend

import (
	"testing"
	"time"
)

func TestDefaultPublisherConfig(t *testing.T) {
	cfg := DefaultPublisherConfig("nats://127.0.0.1:4222")

	if cfg.URL != "nats://127.0.0.1:4222" {
		t.Errorf("URL = %s", cfg.URL)
	}
	if cfg.WeightsSubject != "presage.sync.weights" {
		t.Errorf("WeightsSubject = %s, want presage.sync.weights", cfg.WeightsSubject)
	}
	if cfg.KPISubject != "presage.sync.kpi" {
		t.Errorf("KPISubject = %s, want presage.sync.kpi", cfg.KPISubject)
	}
	if cfg.MaxReconnects != -1 {
		t.Errorf("MaxReconnects = %d, want -1", cfg.MaxReconnects)
	}
	if !cfg.TrackMsgID {
		t.Error("TrackMsgID = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestPublisherConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PublisherConfig)
		wantErr bool
	}{
		{
			name:   "defaults pass",
			mutate: func(c *PublisherConfig) {},
		},
		{
			name:    "missing url",
			mutate:  func(c *PublisherConfig) { c.URL = "" },
			wantErr: true,
		},
		{
			name:    "http scheme rejected",
			mutate:  func(c *PublisherConfig) { c.URL = "http://127.0.0.1:4222" },
			wantErr: true,
		},
		{
			name:   "tls scheme accepted",
			mutate: func(c *PublisherConfig) { c.URL = "tls://nats.example.com:4222" },
		},
		{
			name:    "missing weights subject",
			mutate:  func(c *PublisherConfig) { c.WeightsSubject = "" },
			wantErr: true,
		},
		{
			name:    "missing kpi subject",
			mutate:  func(c *PublisherConfig) { c.KPISubject = "" },
			wantErr: true,
		},
		{
			name: "identical subjects",
			mutate: func(c *PublisherConfig) {
				c.WeightsSubject = "presage.sync.all"
				c.KPISubject = "presage.sync.all"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPublisherConfig("nats://127.0.0.1:4222")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultStreamConfig(t *testing.T) {
	cfg := DefaultStreamConfig()

	if cfg.Name != "PRESAGE_SYNC" {
		t.Errorf("Name = %s, want PRESAGE_SYNC", cfg.Name)
	}
	if len(cfg.Subjects) != 1 || cfg.Subjects[0] != "presage.sync.>" {
		t.Errorf("Subjects = %v, want [presage.sync.>]", cfg.Subjects)
	}
	if cfg.DuplicateWindow != 2*time.Minute {
		t.Errorf("DuplicateWindow = %v, want 2m", cfg.DuplicateWindow)
	}
	if cfg.MaxAge != 7*24*time.Hour {
		t.Errorf("MaxAge = %v, want 168h", cfg.MaxAge)
	}
	if cfg.Replicas != 1 {
		t.Errorf("Replicas = %d, want 1", cfg.Replicas)
	}
}

func TestDefaultBreakerConfig(t *testing.T) {
	cfg := DefaultBreakerConfig("backend-sync")

	if cfg.Name != "backend-sync" {
		t.Errorf("Name = %s, want backend-sync", cfg.Name)
	}
	if cfg.MaxRequests != 3 {
		t.Errorf("MaxRequests = %d, want 3", cfg.MaxRequests)
	}
	if cfg.ConsecutiveFailures != 5 {
		t.Errorf("ConsecutiveFailures = %d, want 5", cfg.ConsecutiveFailures)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 4222 {
		t.Errorf("Port = %d, want 4222", cfg.Port)
	}
	if cfg.JetStreamMaxMem != 256<<20 {
		t.Errorf("JetStreamMaxMem = %d, want 256MB", cfg.JetStreamMaxMem)
	}
}
