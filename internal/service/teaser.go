// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// teaserSanitizer strips all markup; teasers are plain text.
var teaserSanitizer = bluemonday.StrictPolicy()

// Teaser reduces rendered HTML to a plain-text preview of at most
// maxRunes runes, truncated at a word boundary with an ellipsis.
func Teaser(renderedHTML string, maxRunes int) string {
	text := teaserSanitizer.Sanitize(renderedHTML)
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := maxRunes
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxRunes
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}
