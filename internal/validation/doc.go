// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and user-friendly error
// messages. It integrates with the API error format for consistent error
// responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Custom validators for the engine's closed vocabularies
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the API response format
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type ImplicitFeedbackRequest struct {
//	    PresetID string `json:"presetId" validate:"required,min=1,max=200"`
//	    Type     string `json:"type"     validate:"required,implicit_feedback"`
//	    Context  string `json:"context"  validate:"omitempty,max=500"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req ImplicitFeedbackRequest
//	    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Custom Validators
//
// Tags registered for the engine vocabularies:
//   - preset_category: one of analytics, monitoring, compliance, risk,
//     reporting, operations
//   - implicit_feedback: one of selected, ignored, selected_other, engaged
//   - explicit_feedback: one of upvote, downvote, hide, pin
//   - feedback_type: any member of either feedback family
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - uuid: Valid UUID format
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lte=n: Less than or equal to n
//   - min=n / max=n: Value bounds
//
// Enum validations:
//   - oneof=a b c: Must be one of the specified values
//
// # API Error Integration
//
// The ToAPIError method produces errors matching the response envelope:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Type must be one of: selected ignored selected_other engaged",
//	    "details": {"field": "Type", "tag": "implicit_feedback", "value": "clicked"}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "PresetID: is required; Rank: must be greater than or equal to 1",
//	    "details": {
//	        "fields": [
//	            {"field": "PresetID", "tag": "required", "message": "..."},
//	            {"field": "Rank", "tag": "gte", "message": "..."}
//	        ]
//	    }
//	}
//
// # Struct Tag Examples
//
// Scoring request validation:
//
//	type ScoreOptionsRequest struct {
//	    TopN     int    `validate:"omitempty,min=1,max=100"`
//	    Profile  string `validate:"omitempty,min=1,max=64"`
//	    Category string `validate:"omitempty,preset_category"`
//	}
//
// KPI selection validation:
//
//	type SelectionRequest struct {
//	    PresetID string `validate:"required,min=1,max=200"`
//	    Rank     int    `validate:"required,gte=1,lte=100"`
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # Performance
//
// The validator caches struct reflection information, so the first
// validation of a struct type pays the reflection cost and subsequent
// validations reuse the cached plan.
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
