// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"

	"github.com/tomtom215/presage/internal/dispatch"
	"github.com/tomtom215/presage/internal/logging"
)

// WebSocket handles GET /api/v1/ws. Connected clients receive live
// recommendation, feedback, weight-adjustment, and sync events.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		rw := NewResponseWriter(w, r)
		rw.ServiceUnavailable("Live updates are not enabled")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error response.
		logging.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	client := dispatch.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
