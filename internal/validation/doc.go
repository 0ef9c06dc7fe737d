// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps the library in a thread-safe singleton with domain validators
// and user-friendly error messages that convert to the API error format.
//
// # Custom Validators
//
//	audit_action     known audit.Action
//	audit_resource   known audit.Resource
//	audit_level      known audit.Level
//	audit_result     known audit.Result
//	alert_type       known detection.AlertType
//	alert_severity   known detection.Severity
//
// Empty values pass the custom validators; add required where a value is
// mandatory. Field names in errors come from json tags, so a failure on
// UserID with `json:"userId"` is reported as "userId is required".
//
// # Example
//
//	type createEventRequest struct {
//	    UserID string `json:"userId" validate:"required,max=256"`
//	    Action string `json:"action" validate:"required,audit_action"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
