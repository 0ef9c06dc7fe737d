// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCEF  = "cef"
)

// Exporter renders an export document for external consumption.
type Exporter interface {
	Export(doc *Export) ([]byte, error)
	ContentType() string
}

// JSONExporter renders the whole document, {format, data, exportedAt}, as
// indented JSON. Data is never null.
type JSONExporter struct{}

// Export implements Exporter.
func (JSONExporter) Export(doc *Export) ([]byte, error) {
	out := Export{Format: FormatJSON}
	if doc != nil {
		out = *doc
	}
	if out.Data == nil {
		out.Data = []Entry{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// ContentType implements Exporter.
func (JSONExporter) ContentType() string { return "application/json" }

// CEFExporter exports entries in Common Event Format for SIEM ingestion.
type CEFExporter struct {
	DeviceVendor  string
	DeviceProduct string
	DeviceVersion string
}

// NewCEFExporter creates a new CEF exporter with defaults.
func NewCEFExporter() *CEFExporter {
	return &CEFExporter{
		DeviceVendor:  "Sentinel",
		DeviceProduct: "SecurityAudit",
		DeviceVersion: "1.0",
	}
}

// NewExporter returns the exporter for format, or an error for unknown formats.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "", FormatJSON:
		return JSONExporter{}, nil
	case FormatCEF:
		return NewCEFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Export renders one CEF line per entry:
// CEF:Version|Device Vendor|Device Product|Device Version|Signature ID|Name|Severity|Extension
func (e *CEFExporter) Export(doc *Export) ([]byte, error) {
	if doc == nil {
		return []byte{}, nil
	}
	entries := doc.Data
	lines := make([]string, 0, len(entries))

	for i := range entries {
		entry := &entries[i]
		line := fmt.Sprintf("CEF:0|%s|%s|%s|%s|%s|%d|%s",
			e.escapeHeader(e.DeviceVendor),
			e.escapeHeader(e.DeviceProduct),
			e.escapeHeader(e.DeviceVersion),
			e.escapeHeader(string(entry.Action)),
			e.escapeHeader(string(entry.Resource)+" "+string(entry.Action)),
			e.cefSeverity(entry),
			e.buildExtension(entry),
		)
		lines = append(lines, line)
	}

	return []byte(strings.Join(lines, "\n")), nil
}

// ContentType implements Exporter.
func (e *CEFExporter) ContentType() string { return "text/plain; charset=utf-8" }

// cefSeverity maps entry level to CEF severity (0-10). Failed operations are
// raised one step.
func (e *CEFExporter) cefSeverity(entry *Entry) int {
	var sev int
	switch entry.Level {
	case LevelInfo:
		sev = 3
	case LevelWarning:
		sev = 5
	case LevelError:
		sev = 7
	case LevelCritical:
		sev = 10
	}
	if entry.Result == ResultFailure && sev < 10 {
		sev++
	}
	return sev
}

func (e *CEFExporter) buildExtension(entry *Entry) string {
	parts := []string{
		fmt.Sprintf("rt=%d", entry.Timestamp.UnixMilli()),
		"suid=" + e.escapeExtension(entry.UserID),
	}

	if entry.IPAddress != "" && entry.IPAddress != SourceSystem && entry.IPAddress != SourceUnknown {
		parts = append(parts, "src="+e.escapeExtension(entry.IPAddress))
	}
	if entry.UserAgent != "" {
		parts = append(parts, "requestClientApplication="+e.escapeExtension(entry.UserAgent))
	}
	if entry.ResourceID != "" {
		parts = append(parts, "duid="+e.escapeExtension(entry.ResourceID))
	}

	parts = append(parts,
		"act="+e.escapeExtension(string(entry.Action)),
		"cat="+e.escapeExtension(string(entry.Resource)),
		"outcome="+e.escapeExtension(string(entry.Result)),
		"externalId="+e.escapeExtension(entry.ID),
	)

	return strings.Join(parts, " ")
}

// escapeHeader escapes pipes and backslashes in CEF header fields.
func (e *CEFExporter) escapeHeader(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	return flattenNewlines(s)
}

// escapeExtension escapes equals signs and backslashes in extension values.
func (e *CEFExporter) escapeExtension(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "=", "\\=")
	return flattenNewlines(s)
}

func flattenNewlines(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", "")
}
