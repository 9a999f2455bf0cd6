// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"database/sql"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/byceps/byceps-go/internal/model"
)

// VersionField selects which attribute of two versions to compare.
type VersionField string

// Comparable version fields.
const (
	VersionFieldTitle VersionField = "title"
	VersionFieldHead  VersionField = "head"
	VersionFieldBody  VersionField = "body"
)

// VersionText is one side of a diff: an attribute value and the
// creation time of the version it was taken from.
type VersionText struct {
	Text      sql.NullString
	CreatedAt time.Time
}

// SelectPageVersionText extracts the chosen attribute of a page
// version for diffing. Unknown fields select an absent value.
func SelectPageVersionText(v model.PageVersion, field VersionField) VersionText {
	text := sql.NullString{}
	switch field {
	case VersionFieldTitle:
		text = sql.NullString{String: v.Title, Valid: true}
	case VersionFieldHead:
		text = v.Head
	case VersionFieldBody:
		text = sql.NullString{String: v.Body, Valid: true}
	}
	return VersionText{Text: text, CreatedAt: v.CreatedAt}
}

// SelectNewsItemVersionText extracts the chosen attribute of a news
// item version for diffing. News item versions have no head, so
// selecting it yields an absent value, as do unknown fields.
func SelectNewsItemVersionText(v model.NewsItemVersion, field VersionField) VersionText {
	text := sql.NullString{}
	switch field {
	case VersionFieldTitle:
		text = sql.NullString{String: v.Title, Valid: true}
	case VersionFieldBody:
		text = sql.NullString{String: v.Body, Valid: true}
	}
	return VersionText{Text: text, CreatedAt: v.CreatedAt}
}

// SelectSnippetVersionText extracts a snippet version's body for
// diffing. Snippet versions carry no other comparable attribute.
func SelectSnippetVersionText(v model.SnippetVersion) VersionText {
	return VersionText{
		Text:      sql.NullString{String: v.Body, Valid: true},
		CreatedAt: v.CreatedAt,
	}
}

// CreateHTMLDiff produces a side-by-side HTML diff table of the two
// texts, with the versions' creation times as column labels. Returns
// an empty string when both sides are equal after treating an absent
// value as the empty string.
func CreateHTMLDiff(from, to VersionText) string {
	fromText := from.Text.String
	toText := to.Text.String
	if fromText == toText {
		return ""
	}

	fromLines := splitLines(fromText)
	toLines := splitLines(toText)

	var b strings.Builder
	b.WriteString(`<table class="diff">` + "\n")
	b.WriteString("<thead><tr>")
	fmt.Fprintf(&b, "<th>%s</th><th>%s</th>",
		html.EscapeString(formatDiffLabel(from.CreatedAt)),
		html.EscapeString(formatDiffLabel(to.CreatedAt)))
	b.WriteString("</tr></thead>\n<tbody>\n")

	matcher := difflib.NewMatcher(fromLines, toLines)
	for _, opcode := range matcher.GetOpCodes() {
		switch opcode.Tag {
		case 'e':
			for k := 0; k < opcode.I2-opcode.I1; k++ {
				writeDiffRow(&b, "", fromLines[opcode.I1+k], toLines[opcode.J1+k])
			}
		case 'r':
			left := opcode.I2 - opcode.I1
			right := opcode.J2 - opcode.J1
			for k := 0; k < max(left, right); k++ {
				fromLine, toLine := "", ""
				if k < left {
					fromLine = fromLines[opcode.I1+k]
				}
				if k < right {
					toLine = toLines[opcode.J1+k]
				}
				writeDiffRow(&b, "changed", fromLine, toLine)
			}
		case 'd':
			for k := opcode.I1; k < opcode.I2; k++ {
				writeDiffRow(&b, "removed", fromLines[k], "")
			}
		case 'i':
			for k := opcode.J1; k < opcode.J2; k++ {
				writeDiffRow(&b, "added", "", toLines[k])
			}
		}
	}

	b.WriteString("</tbody>\n</table>")
	return b.String()
}

func writeDiffRow(b *strings.Builder, class, fromLine, toLine string) {
	if class != "" {
		fmt.Fprintf(b, `<tr class="%s">`, class)
	} else {
		b.WriteString("<tr>")
	}
	fmt.Fprintf(b, "<td>%s</td><td>%s</td></tr>\n",
		html.EscapeString(fromLine), html.EscapeString(toLine))
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func formatDiffLabel(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// VersionPair is two consecutive versions for UI diffing. Earlier is
// nil for the initial version.
type VersionPair[T any] struct {
	Version *T
	Earlier *T
}

// PairVersionsForHistory pairs a newest-first version sequence
// consecutively, ending with the initial version paired with nil.
func PairVersionsForHistory[T any](versions []T) []VersionPair[T] {
	pairs := make([]VersionPair[T], 0, len(versions))
	for i := range versions {
		pair := VersionPair[T]{Version: &versions[i]}
		if i+1 < len(versions) {
			pair.Earlier = &versions[i+1]
		}
		pairs = append(pairs, pair)
	}
	return pairs
}
