// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/validation"
)

var errEndBeforeStart = errors.New("end_date must not be before start_date")

// decodeJSON reads a size-limited JSON body into dst and validates it.
// It writes the error response itself and reports whether the handler
// should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large", nil)
			return false
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil)
		return false
	}
	return validateRequest(w, r, dst)
}

// validateRequest validates v with go-playground/validator and writes a 400
// on failure.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		apiErr := verr.ToAPIError()
		respondValidationError(w, r, &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		})
		return false
	}
	return true
}

// queryParser collects query parameter parse errors so a handler can report
// the first one.
type queryParser struct {
	values map[string][]string
	err    error
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query()}
}

func (p *queryParser) strParam(name string) string {
	if v := p.values[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (p *queryParser) intParam(name string, def int) int {
	raw := p.strParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s must be an integer", name)
	}
	return n
}

func (p *queryParser) boolParam(name string) *bool {
	raw := p.strParam(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%s must be true or false", name)
		}
		return nil
	}
	return &b
}

// timeParam accepts RFC 3339 timestamps or plain dates (YYYY-MM-DD, UTC).
func (p *queryParser) timeParam(name string) *time.Time {
	raw := p.strParam(name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	if p.err == nil {
		p.err = fmt.Errorf("%s must be an RFC 3339 timestamp or YYYY-MM-DD date", name)
	}
	return nil
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return errEndBeforeStart
	}
	return nil
}

// parseEventQuery reads and validates audit query parameters.
func parseEventQuery(w http.ResponseWriter, r *http.Request, defaultLimit int) (EventQueryRequest, bool) {
	p := newQueryParser(r)
	q := EventQueryRequest{
		UserID:    p.strParam("user_id"),
		Action:    p.strParam("action"),
		Resource:  p.strParam("resource"),
		Level:     p.strParam("level"),
		Result:    p.strParam("result"),
		StartDate: p.timeParam("start_date"),
		EndDate:   p.timeParam("end_date"),
		Limit:     p.intParam("limit", defaultLimit),
	}
	if p.err == nil {
		p.err = checkRange(q.StartDate, q.EndDate)
	}
	if p.err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, p.err.Error(), nil)
		return q, false
	}
	return q, validateRequest(w, r, &q)
}

// parseAlertQuery reads and validates alert list parameters.
func parseAlertQuery(w http.ResponseWriter, r *http.Request) (AlertQueryRequest, bool) {
	p := newQueryParser(r)
	q := AlertQueryRequest{
		Type:         p.strParam("type"),
		Severity:     p.strParam("severity"),
		Acknowledged: p.boolParam("acknowledged"),
		Resolved:     p.boolParam("resolved"),
		StartDate:    p.timeParam("start_date"),
		EndDate:      p.timeParam("end_date"),
		Limit:        p.intParam("limit", defaultAlertLimit),
	}
	if p.err == nil {
		p.err = checkRange(q.StartDate, q.EndDate)
	}
	if p.err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, p.err.Error(), nil)
		return q, false
	}
	return q, validateRequest(w, r, &q)
}
