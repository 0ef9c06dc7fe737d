// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import "regexp"

// The pattern sets are heuristics. They match substrings case-insensitively
// and produce false positives on ordinary text (an apostrophe in a name, an
// "on..." word inside a tag attribute value). Callers treat a match as a
// signal to raise an alert, not as proof of an attack.

var sqlInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(%27)|(')|(--)|(%23)|(#)`),
	regexp.MustCompile(`(?i)(\bor\b|\band\b).*?=`),
	regexp.MustCompile(`(?i)exec(\s|\+)+(s|x)p\w+`),
	regexp.MustCompile(`(?i)union(\s|\+).*?select`),
	regexp.MustCompile(`(?i)select(\s|\+).*?from`),
	regexp.MustCompile(`(?i)insert(\s|\+).*?into`),
	regexp.MustCompile(`(?i)delete(\s|\+).*?from`),
	regexp.MustCompile(`(?i)update(\s|\+).*?set`),
	regexp.MustCompile(`(?i)drop(\s|\+).*?table`),
}

// RE2 has no lookahead; a lazy match up to the closing tag accepts the same
// inputs as the tempered-token form.
var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script\b.*?</script>`),
	regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)<.*?on\w+.*?>`),
}

// DetectSQLInjection reports whether input contains an SQL injection marker.
func DetectSQLInjection(input string) bool {
	return matchAny(sqlInjectionPatterns, input)
}

// DetectXSS reports whether input contains a cross-site scripting marker.
func DetectXSS(input string) bool {
	return matchAny(xssPatterns, input)
}

func matchAny(patterns []*regexp.Regexp, input string) bool {
	for _, p := range patterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

// Finding is one detection function hit.
type Finding struct {
	Type  AlertType `json:"type"`
	Field string    `json:"field"`
}

// ScanFields runs both detection functions over each named value and returns
// one finding per (field, type) hit, in field order.
func ScanFields(fields []NamedValue) []Finding {
	var findings []Finding
	for _, f := range fields {
		if DetectSQLInjection(f.Value) {
			findings = append(findings, Finding{Type: AlertTypeSQLInjection, Field: f.Name})
		}
		if DetectXSS(f.Value) {
			findings = append(findings, Finding{Type: AlertTypeXSS, Field: f.Name})
		}
	}
	return findings
}

// NamedValue is an input value labelled with where it came from.
type NamedValue struct {
	Name  string
	Value string
}
