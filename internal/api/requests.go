// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package api provides HTTP request bodies and validation structs with
// go-playground/validator tags.
//
// Request bodies decode straight into engine types where possible; the
// *Validation structs carry the validator tags and are populated from
// the decoded body before processing. Custom tags cover the engine's
// closed vocabularies:
//   - preset_category: one of the six catalog categories
//   - implicit_feedback: selected, ignored, selected_other, engaged
//   - explicit_feedback: upvote, downvote, hide, pin
//   - feedback_type: either feedback family
//
// Example usage:
//
//	var req ScoreRequest
//	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { ... }
//	if apiErr := validateRequest(req.validation()); apiErr != nil {
//	    rw.ValidationError(apiErr.Message, apiErr.Details)
//	    return
//	}
package api

import (
	"github.com/tomtom215/presage/internal/feedback"
	"github.com/tomtom215/presage/internal/recommend"
)

// ScoreRequest is the body of POST /api/v1/score.
//
// Presets is the caller-owned candidate catalog; the engine holds no
// preset inventory of its own. Options selects profile, weights, top-N
// truncation, and the optional debug payload.
type ScoreRequest struct {
	Presets []recommend.Preset `json:"presets"`
	Context recommend.Context  `json:"context"`
	Options recommend.Options  `json:"options"`
}

// ScoreRequestValidation bounds the scoring request. Profile names are
// deliberately unvalidated: unknown profiles degrade to the default
// chain instead of erroring.
type ScoreRequestValidation struct {
	PresetCount     int    `validate:"min=1,max=10000"`
	TopN            int    `validate:"min=0,max=1000"`
	ContextCategory string `validate:"omitempty,preset_category"`
}

func (req *ScoreRequest) validation() *ScoreRequestValidation {
	return &ScoreRequestValidation{
		PresetCount:     len(req.Presets),
		TopN:            req.Options.TopN,
		ContextCategory: string(req.Context.Category),
	}
}

// ImplicitFeedbackRequest is the body of POST /api/v1/feedback/implicit.
//
// Recommendation links the event back to the recommendation it answers.
// When it carries a breakdown, reinforcement is applied automatically
// for Profile (or the configured default profile when empty).
type ImplicitFeedbackRequest struct {
	PresetID       string                       `json:"preset_id"`
	Type           string                       `json:"type"`
	Context        recommend.Context            `json:"context"`
	Profile        string                       `json:"profile,omitempty"`
	Recommendation *feedback.RecommendationData `json:"recommendation,omitempty"`
}

// ImplicitFeedbackRequestValidation validates the implicit feedback body.
type ImplicitFeedbackRequestValidation struct {
	PresetID        string `validate:"required,min=1,max=256"`
	Type            string `validate:"required,implicit_feedback"`
	ContextCategory string `validate:"omitempty,preset_category"`
}

func (req *ImplicitFeedbackRequest) validation() *ImplicitFeedbackRequestValidation {
	return &ImplicitFeedbackRequestValidation{
		PresetID:        req.PresetID,
		Type:            req.Type,
		ContextCategory: string(req.Context.Category),
	}
}

// ExplicitFeedbackRequest is the body of POST /api/v1/feedback/explicit.
type ExplicitFeedbackRequest struct {
	PresetID string            `json:"preset_id"`
	Type     string            `json:"type"`
	Context  recommend.Context `json:"context"`
	Profile  string            `json:"profile,omitempty"`
}

// ExplicitFeedbackRequestValidation validates the explicit feedback body.
type ExplicitFeedbackRequestValidation struct {
	PresetID        string `validate:"required,min=1,max=256"`
	Type            string `validate:"required,explicit_feedback"`
	ContextCategory string `validate:"omitempty,preset_category"`
}

func (req *ExplicitFeedbackRequest) validation() *ExplicitFeedbackRequestValidation {
	return &ExplicitFeedbackRequestValidation{
		PresetID:        req.PresetID,
		Type:            req.Type,
		ContextCategory: string(req.Context.Category),
	}
}

// ReinforceRequest is the body of POST /api/v1/reinforce. It applies a
// reinforcement step directly, outside the feedback recording path.
type ReinforceRequest struct {
	Profile   string                   `json:"profile"`
	PresetID  string                   `json:"preset_id"`
	Type      string                   `json:"type"`
	Breakdown recommend.ScoreBreakdown `json:"breakdown"`
}

// ReinforceRequestValidation validates the reinforcement body.
type ReinforceRequestValidation struct {
	Profile  string `validate:"required,min=1,max=64"`
	PresetID string `validate:"required,min=1,max=256"`
	Type     string `validate:"required,feedback_type"`
}

func (req *ReinforceRequest) validation() *ReinforceRequestValidation {
	return &ReinforceRequestValidation{
		Profile:  req.Profile,
		PresetID: req.PresetID,
		Type:     req.Type,
	}
}

// ImpressionsRequest is the body of POST /api/v1/kpi/impressions.
type ImpressionsRequest struct {
	PresetIDs []string `json:"preset_ids"`
}

// ImpressionsRequestValidation bounds the impression batch size.
type ImpressionsRequestValidation struct {
	Count int `validate:"min=1,max=1000"`
}

func (req *ImpressionsRequest) validation() *ImpressionsRequestValidation {
	return &ImpressionsRequestValidation{Count: len(req.PresetIDs)}
}

// SelectionRequest is the body of POST /api/v1/kpi/selections. Rank is
// the 1-based position the preset held in the recommendation list.
type SelectionRequest struct {
	PresetID string `json:"preset_id"`
	Rank     int    `json:"rank"`
}

// SelectionRequestValidation validates the selection body.
type SelectionRequestValidation struct {
	PresetID string `validate:"required,min=1,max=256"`
	Rank     int    `validate:"min=1,max=10000"`
}

func (req *SelectionRequest) validation() *SelectionRequestValidation {
	return &SelectionRequestValidation{
		PresetID: req.PresetID,
		Rank:     req.Rank,
	}
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequestValidation validates the login body.
type LoginRequestValidation struct {
	Username string `validate:"required,min=1"`
	Password string `validate:"required,min=1"`
}

func (req *LoginRequest) validation() *LoginRequestValidation {
	return &LoginRequestValidation{
		Username: req.Username,
		Password: req.Password,
	}
}

// LoginResponse is the success payload of POST /api/v1/auth/login. The
// token is also set as an HTTP-only cookie.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// EventsRequestValidation bounds the pagination query parameters of
// GET /api/v1/feedback/events.
type EventsRequestValidation struct {
	Limit  int `validate:"min=1,max=1000"`
	Offset int `validate:"min=0,max=1000000"`
}

// EffectiveWeightsRequestValidation bounds the optional blend-share
// query parameters of GET /api/v1/weights/effective/{profile}.
// Alpha is the global share, beta the local share; zero for both falls
// back to the configured default blend inside the manager.
type EffectiveWeightsRequestValidation struct {
	Profile string  `validate:"required,min=1,max=64"`
	Alpha   float64 `validate:"min=0,max=100"`
	Beta    float64 `validate:"min=0,max=100"`
}
