// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package dispatch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
// This enables clear observability in logs and metrics.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	// This may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeRecommendationServed = "recommendation_served"
	MessageTypeFeedbackRecorded     = "feedback_recorded"
	MessageTypeWeightsAdjusted      = "weights_adjusted"
	MessageTypeSyncCompleted        = "sync_completed"
	MessageTypePing                 = "ping"
	MessageTypePong                 = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext starts the hub with context support for graceful shutdown.
// This method is designed for use with suture supervision.
//
// When the context is canceled:
//  1. All connected clients are gracefully closed
//  2. The method returns ctx.Err()
//
// This allows the hub to be restarted by a supervisor without leaving
// orphaned connections.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister)
// - Priority 3: Broadcast messages
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// DETERMINISM: Priority-based selection prevents non-deterministic
		// ordering when multiple channels are ready simultaneously.

		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
			// Context not canceled, continue
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
			// No lifecycle events pending
		}

		// Priority 3: Handle broadcast messages or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// registerClient adds a client to the active set.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.TrackWSConnection(true)
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

// unregisterClient removes a client from the active set and closes its
// send queue. Safe to call for clients that were already removed by a
// failed broadcast.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		metrics.TrackWSConnection(false)
	}
	total := len(h.clients)
	h.mu.Unlock()

	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// logGracefulShutdown logs the shutdown with structured fields for observability.
// This method:
//  1. Closes all connected clients
//  2. Logs structured shutdown information without error field
//
// Note: ctx.Err() is NOT logged as an error because context cancellation
// is expected behavior during graceful shutdown. Logging it as .Err() would
// confuse operators monitoring error logs.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	// Count clients before closing (for logging)
	clientCount := h.GetClientCount()

	// Close all clients gracefully
	h.closeAllClients()

	// Determine shutdown reason from context error
	reason := getShutdownReason(ctx)

	// Log shutdown with structured fields (no error field - this is expected behavior)
	logging.Info().
		Str("component", "dispatch-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("dispatch hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
// This provides clear observability for operators monitoring logs.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		// Fallback for any future context error types
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients sends a message to all connected clients in a deterministic order.
// DETERMINISM: Sorts clients by their monotonic ID to ensure consistent iteration
// order. This prevents non-deterministic message delivery order which could cause:
// - Inconsistent client behavior in tests
// - Non-reproducible race conditions
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}

	// Sort by client ID for deterministic ordering
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	// Track clients to remove (can't modify map during iteration)
	var toRemove []*Client

	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.RecordWSMessage()
		default:
			// Channel full or closed, mark for removal
			toRemove = append(toRemove, client)
		}
	}

	// Remove failed clients
	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.TrackWSConnection(false)
		metrics.RecordWSError("send_queue_full")
		logging.Warn().Uint64("client_id", client.id).Msg("websocket client send queue full, disconnecting")
	}
}

// closeAllClients gracefully closes all connected WebSocket clients.
// Called during shutdown to ensure clean termination.
// DETERMINISM: Closes clients in ID order to ensure consistent shutdown behavior.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.TrackWSConnection(false)
	}
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastJSON sends a JSON message to all connected clients
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := Message{
		Type: messageType,
		Data: data,
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping JSON message")
	}
}

// RecommendationServedData represents data sent with recommendation_served message
type RecommendationServedData struct {
	Timestamp   string `json:"timestamp"`
	Profile     string `json:"profile"`
	PresetCount int    `json:"preset_count"`
	TopPresetID string `json:"top_preset_id,omitempty"`
}

// BroadcastRecommendationServed notifies all clients that a scoring call
// returned a ranked list.
func (h *Hub) BroadcastRecommendationServed(profile string, presetCount int, topPresetID string) {
	data := RecommendationServedData{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Profile:     profile,
		PresetCount: presetCount,
		TopPresetID: topPresetID,
	}

	message := Message{
		Type: MessageTypeRecommendationServed,
		Data: data,
	}

	select {
	case h.broadcast <- message:
		logging.Debug().
			Int("clients", h.GetClientCount()).
			Str("profile", profile).
			Int("preset_count", presetCount).
			Msg("broadcast recommendation_served")
	default:
		logging.Warn().Msg("broadcast channel full, dropping recommendation_served message")
	}
}

// FeedbackRecordedData represents data sent with feedback_recorded message
type FeedbackRecordedData struct {
	Timestamp string `json:"timestamp"`
	PresetID  string `json:"preset_id"`
	Type      string `json:"type"`
	Family    string `json:"family"`
	Filtered  bool   `json:"filtered,omitempty"`
}

// BroadcastFeedbackRecorded notifies all clients that a feedback event
// was recorded. Filtered is true when the preset is now excluded from
// future recommendations (a hide took effect).
func (h *Hub) BroadcastFeedbackRecorded(presetID, feedbackType, family string, filtered bool) {
	data := FeedbackRecordedData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		PresetID:  presetID,
		Type:      feedbackType,
		Family:    family,
		Filtered:  filtered,
	}

	message := Message{
		Type: MessageTypeFeedbackRecorded,
		Data: data,
	}

	select {
	case h.broadcast <- message:
		logging.Debug().
			Int("clients", h.GetClientCount()).
			Str("preset_id", presetID).
			Str("type", feedbackType).
			Msg("broadcast feedback_recorded")
	default:
		logging.Warn().Msg("broadcast channel full, dropping feedback_recorded message")
	}
}

// WeightsAdjustedData represents data sent with weights_adjusted message
type WeightsAdjustedData struct {
	Timestamp string `json:"timestamp"`
	Profile   string `json:"profile"`
	PresetID  string `json:"preset_id"`
	Type      string `json:"type"`
	Applied   bool   `json:"applied"`
	Reason    string `json:"reason,omitempty"`
}

// BroadcastWeightsAdjusted notifies all clients that a reinforcement pass
// ran for a profile. Applied is false when the adjustment was rejected
// (below the feedback threshold or invalid input).
func (h *Hub) BroadcastWeightsAdjusted(profile, presetID, feedbackType string, applied bool, reason string) {
	data := WeightsAdjustedData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Profile:   profile,
		PresetID:  presetID,
		Type:      feedbackType,
		Applied:   applied,
		Reason:    reason,
	}

	message := Message{
		Type: MessageTypeWeightsAdjusted,
		Data: data,
	}

	select {
	case h.broadcast <- message:
		logging.Debug().
			Int("clients", h.GetClientCount()).
			Str("profile", profile).
			Bool("applied", applied).
			Msg("broadcast weights_adjusted")
	default:
		logging.Warn().Msg("broadcast channel full, dropping weights_adjusted message")
	}
}

// SyncCompletedData represents data sent with sync_completed message
type SyncCompletedData struct {
	Timestamp      string `json:"timestamp"`
	Tier           string `json:"tier"`
	SyncDurationMs int64  `json:"sync_duration_ms"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// BroadcastSyncCompleted notifies all clients that a sync tier finished a cycle
func (h *Hub) BroadcastSyncCompleted(tier string, durationMs int64, syncErr error) {
	data := SyncCompletedData{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Tier:           tier,
		SyncDurationMs: durationMs,
		Success:        syncErr == nil,
	}
	if syncErr != nil {
		data.Error = syncErr.Error()
	}

	message := Message{
		Type: MessageTypeSyncCompleted,
		Data: data,
	}

	select {
	case h.broadcast <- message:
		logging.Info().Int("clients", h.GetClientCount()).Str("tier", tier).Msg("broadcast sync_completed")
	default:
		logging.Warn().Msg("broadcast channel full, dropping sync_completed message")
	}
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
