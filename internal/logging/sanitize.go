// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package logging

import (
	"fmt"
	"strings"
)

// maxLoggedValueLen bounds attacker-controlled strings written to logs.
const maxLoggedValueLen = 256

// SanitizeValue escapes control characters and truncates s so that
// caller-supplied values (user IDs, payloads, header values) cannot forge
// additional log lines.
func SanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > maxLoggedValueLen {
		return out[:maxLoggedValueLen] + "..."
	}
	return out
}
