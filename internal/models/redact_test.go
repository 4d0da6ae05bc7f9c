// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import "testing"

func TestIsSensitiveKeyDefaults(t *testing.T) {
	sensitive := []string{"password", "user_password", "API_KEY", "refresh_token", "client_secret"}
	for _, k := range sensitive {
		if !IsSensitiveKey(k) {
			t.Errorf("IsSensitiveKey(%q) = false, want true", k)
		}
	}
	for _, k := range []string{"name", "email", "description"} {
		if IsSensitiveKey(k) {
			t.Errorf("IsSensitiveKey(%q) = true, want false", k)
		}
	}
}

func TestSetRedactionPatterns(t *testing.T) {
	t.Cleanup(func() {
		SetRedactionPatterns(DefaultRedactionPatterns)
	})

	SetRedactionPatterns([]string{"ssn"})
	if !IsSensitiveKey("user_ssn") {
		t.Error("configured pattern should match")
	}
	if IsSensitiveKey("password") {
		t.Error("default pattern should no longer match after override")
	}

	// Nil disables redaction entirely.
	SetRedactionPatterns(nil)
	if IsSensitiveKey("password") {
		t.Error("nil patterns should disable matching")
	}
	props := RedactProperties(map[string]interface{}{"password": "hunter2"})
	if props["password"] != "hunter2" {
		t.Errorf("password = %v, want passthrough when disabled", props["password"])
	}
}

func TestRedactProperties(t *testing.T) {
	props := map[string]interface{}{
		"name":     "release",
		"password": "hunter2",
		"attributes": map[string]interface{}{
			"api_key": "abc123",
			"count":   3,
		},
	}

	out := RedactProperties(props)
	if out["name"] != "release" {
		t.Errorf("name = %v, want release", out["name"])
	}
	if out["password"] != RedactedPlaceholder {
		t.Errorf("password = %v, want placeholder", out["password"])
	}
	nested, ok := out["attributes"].(map[string]interface{})
	if !ok {
		t.Fatalf("attributes not a map: %T", out["attributes"])
	}
	if nested["api_key"] != RedactedPlaceholder {
		t.Errorf("nested api_key = %v, want placeholder", nested["api_key"])
	}
	if nested["count"] != 3 {
		t.Errorf("nested count = %v, want 3", nested["count"])
	}

	// Input untouched.
	if props["password"] != "hunter2" {
		t.Error("RedactProperties mutated its input")
	}

	if RedactProperties(nil) != nil {
		t.Error("nil input should stay nil")
	}
}
