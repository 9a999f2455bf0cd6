// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package i18n

import "testing"

func TestNegotiate(t *testing.T) {
	n, err := NewNegotiator([]string{"en", "de"}, "en")
	if err != nil {
		t.Fatalf("NewNegotiator: %v", err)
	}

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"de", "de"},
		{"de-AT,de;q=0.9", "de"},
		{"fr", "en"},
		{"garbage;;;", "en"},
		{"en-US,en;q=0.8,de;q=0.5", "en"},
	}
	for _, tt := range tests {
		if got := n.Negotiate(tt.header); got != tt.want {
			t.Errorf("Negotiate(%q) = %q; want %q", tt.header, got, tt.want)
		}
	}
}

func TestNewNegotiatorValidation(t *testing.T) {
	if _, err := NewNegotiator(nil, "en"); err == nil {
		t.Error("expected error for empty language list")
	}
	if _, err := NewNegotiator([]string{"en"}, "de"); err == nil {
		t.Error("expected error for default outside supported set")
	}
	if _, err := NewNegotiator([]string{"en", "not a lang!"}, "en"); err == nil {
		t.Error("expected error for malformed language code")
	}
}

func TestFallbackChain(t *testing.T) {
	n, err := NewNegotiator([]string{"en", "de"}, "en")
	if err != nil {
		t.Fatalf("NewNegotiator: %v", err)
	}

	got := n.FallbackChain("de")
	if len(got) != 2 || got[0] != "de" || got[1] != "en" {
		t.Errorf("FallbackChain(\"de\") = %v; want [de en]", got)
	}
	got = n.FallbackChain("en")
	if len(got) != 1 || got[0] != "en" {
		t.Errorf("FallbackChain(\"en\") = %v; want [en]", got)
	}
}
