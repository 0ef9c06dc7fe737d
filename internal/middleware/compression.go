// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package middleware

import (
	"compress/gzip"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// compressibleTypes covers the JSON API and the CEF export.
var compressibleTypes = []string{
	"application/json",
	"text/plain",
}

// Compression gzips JSON and text responses for clients that accept it. It
// is applied to the export and list routes, whose bodies can run to
// thousands of entries. Level follows compress/gzip; 0 selects
// gzip.DefaultCompression.
func Compression(level int) func(http.Handler) http.Handler {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return chimiddleware.NewCompressor(level, compressibleTypes...).Handler
}
