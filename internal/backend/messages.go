// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package backend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/presage/internal/weightsync"
)

// SchemaVersion is the current sync message schema version.
// Increment this when making breaking changes to the wire types.
const SchemaVersion = 1

// Metadata keys and values attached to published messages.
const (
	// MetaMessageType labels the payload kind on the message metadata.
	MetaMessageType = "type"

	// MessageTypeWeights marks a per-profile weight snapshot payload.
	MessageTypeWeights = "weights"

	// MessageTypeKPI marks a KPI snapshot payload.
	MessageTypeKPI = "kpi"
)

// WeightsMessage is the wire form of a per-profile weight snapshot.
type WeightsMessage struct {
	// SchemaVersion tracks the message format version.
	SchemaVersion int `json:"schema_version"`

	// MessageID is a unique id, reused as the Nats-Msg-Id dedup header.
	MessageID string `json:"message_id"`

	// CreatedAt is when the source snapshot was assembled.
	CreatedAt time.Time `json:"created_at"`

	// Profiles maps profile name to its effective weight state.
	Profiles map[string]weightsync.EffectiveWeights `json:"profiles"`
}

// NewWeightsMessage builds a weights message from a sync snapshot.
func NewWeightsMessage(snap weightsync.Snapshot) *WeightsMessage {
	return &WeightsMessage{
		SchemaVersion: SchemaVersion,
		MessageID:     uuid.NewString(),
		CreatedAt:     snap.CreatedAt,
		Profiles:      snap.Profiles,
	}
}

// Validate checks required fields.
func (m *WeightsMessage) Validate() error {
	if m.MessageID == "" {
		return fmt.Errorf("message id required")
	}
	if m.SchemaVersion <= 0 {
		return fmt.Errorf("schema version required")
	}
	return nil
}

// KPIMessage is the wire form of a session KPI snapshot.
type KPIMessage struct {
	// SchemaVersion tracks the message format version.
	SchemaVersion int `json:"schema_version"`

	// MessageID is a unique id, reused as the Nats-Msg-Id dedup header.
	MessageID string `json:"message_id"`

	// CreatedAt is when the source snapshot was assembled.
	CreatedAt time.Time `json:"created_at"`

	// KPI is the session's metric snapshot.
	KPI weightsync.KPIMetrics `json:"kpi"`
}

// NewKPIMessage builds a KPI message from a sync snapshot.
func NewKPIMessage(snap weightsync.Snapshot) *KPIMessage {
	return &KPIMessage{
		SchemaVersion: SchemaVersion,
		MessageID:     uuid.NewString(),
		CreatedAt:     snap.CreatedAt,
		KPI:           snap.KPI,
	}
}

// Validate checks required fields.
func (m *KPIMessage) Validate() error {
	if m.MessageID == "" {
		return fmt.Errorf("message id required")
	}
	if m.SchemaVersion <= 0 {
		return fmt.Errorf("schema version required")
	}
	return nil
}

// EncodeWeightsMessage marshals a weights message for publishing.
func EncodeWeightsMessage(m *WeightsMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate weights message: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal weights message: %w", err)
	}
	return data, nil
}

// DecodeWeightsMessage unmarshals a published weights message.
func DecodeWeightsMessage(data []byte) (*WeightsMessage, error) {
	var m WeightsMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal weights message: %w", err)
	}
	return &m, nil
}

// EncodeKPIMessage marshals a KPI message for publishing.
func EncodeKPIMessage(m *KPIMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate kpi message: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal kpi message: %w", err)
	}
	return data, nil
}

// DecodeKPIMessage unmarshals a published KPI message.
func DecodeKPIMessage(data []byte) (*KPIMessage, error) {
	var m KPIMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal kpi message: %w", err)
	}
	return &m, nil
}
