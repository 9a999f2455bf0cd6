// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package i18n negotiates content languages. Content itself is stored
// per language code; this package only picks which code to serve.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Negotiator matches requested locales against the languages content
// is available in, falling back to a configured default.
type Negotiator struct {
	matcher     language.Matcher
	supported   []string
	defaultLang string
}

// NewNegotiator creates a Negotiator. The default language must be
// among the supported ones.
func NewNegotiator(supported []string, defaultLang string) (*Negotiator, error) {
	if len(supported) == 0 {
		return nil, fmt.Errorf("no supported languages configured")
	}

	tags := make([]language.Tag, 0, len(supported))
	hasDefault := false
	for _, lang := range supported {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("parsing language %q: %w", lang, err)
		}
		tags = append(tags, tag)
		if lang == defaultLang {
			hasDefault = true
		}
	}
	if !hasDefault {
		return nil, fmt.Errorf("default language %q is not among the supported languages", defaultLang)
	}

	return &Negotiator{
		matcher:     language.NewMatcher(tags),
		supported:   supported,
		defaultLang: defaultLang,
	}, nil
}

// Negotiate returns the best supported language code for an
// Accept-Language header value, or the default when nothing matches.
func (n *Negotiator) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return n.defaultLang
	}
	requested, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(requested) == 0 {
		return n.defaultLang
	}
	_, index, confidence := n.matcher.Match(requested...)
	if confidence == language.No {
		return n.defaultLang
	}
	return n.supported[index]
}

// Default returns the platform default language code.
func (n *Negotiator) Default() string {
	return n.defaultLang
}

// FallbackChain returns the candidate language codes to try for a
// lookup, starting with the preferred one and ending with the default.
func (n *Negotiator) FallbackChain(preferred string) []string {
	if preferred == "" || preferred == n.defaultLang {
		return []string{n.defaultLang}
	}
	return []string{preferred, n.defaultLang}
}
