// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import "strings"

// RedactedPlaceholder replaces sensitive property values in displays and
// exports.
const RedactedPlaceholder = "[REDACTED]"

// DefaultRedactionPatterns are the key substrings treated as sensitive.
// Matching is case-insensitive.
var DefaultRedactionPatterns = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"private_key",
}

var redactionPatterns = DefaultRedactionPatterns

// SetRedactionPatterns overrides the sensitive-key patterns. An empty slice
// disables redaction. Intended for startup configuration, not concurrent use.
func SetRedactionPatterns(patterns []string) {
	redactionPatterns = patterns
}

// IsSensitiveKey reports whether a property key matches any configured
// redaction pattern.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range redactionPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// RedactProperties returns a copy of the document with sensitive values
// replaced by RedactedPlaceholder. Nested maps are walked; other values are
// shared with the input.
func RedactProperties(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return nil
	}
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		if IsSensitiveKey(k) {
			out[k] = RedactedPlaceholder
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = RedactProperties(nested)
			continue
		}
		out[k] = v
	}
	return out
}
