// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))

	logger.With("service", "retention").WithGroup("run").Warn("cleanup slow", "deleted", 3)

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("expected warn level, got %s", out)
	}
	if !strings.Contains(out, `"service":"retention"`) {
		t.Errorf("expected service attribute, got %s", out)
	}
	if !strings.Contains(out, `"run.deleted":3`) {
		t.Errorf("expected grouped attribute, got %s", out)
	}
	if !strings.Contains(out, "cleanup slow") {
		t.Errorf("expected message, got %s", out)
	}
}
