// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package model defines the domain types of the versioned content
// subsystem: scopes, snippets, pages, news items, their versions, and
// the domain events they emit.
package model

import (
	"encoding/json"
	"strings"
)

// ScopeType is the kind of visibility bucket a snippet lives in.
type ScopeType string

// Scope types
const (
	ScopeTypeGlobal ScopeType = "global"
	ScopeTypeBrand  ScopeType = "brand"
	ScopeTypeSite   ScopeType = "site"
)

// Scope identifies a visibility bucket for snippets.
type Scope struct {
	Type ScopeType
	Name string
}

// GlobalScope returns the single global scope. Its name is "global" by
// convention.
func GlobalScope() Scope {
	return Scope{Type: ScopeTypeGlobal, Name: "global"}
}

// ScopeForBrand returns the scope for the given brand.
func ScopeForBrand(brandID BrandID) Scope {
	return Scope{Type: ScopeTypeBrand, Name: string(brandID)}
}

// ScopeForSite returns the scope for the given site.
func ScopeForSite(siteID SiteID) Scope {
	return Scope{Type: ScopeTypeSite, Name: string(siteID)}
}

// String returns the scope in "<type>/<name>" form, as used in URLs
// and logs.
func (s Scope) String() string {
	return string(s.Type) + "/" + s.Name
}

// MarshalJSON encodes the scope in its "<type>/<name>" string form.
func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a scope from its "<type>/<name>" string form.
func (s *Scope) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseScope(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScope parses a "<type>/<name>" string into a Scope by
// partitioning it at the first slash.
func ParseScope(value string) (Scope, error) {
	typeStr, name, found := strings.Cut(value, "/")
	if !found {
		return Scope{}, InvalidScopeError{Value: value}
	}

	scopeType := ScopeType(typeStr)
	switch scopeType {
	case ScopeTypeGlobal, ScopeTypeBrand, ScopeTypeSite:
		return Scope{Type: scopeType, Name: name}, nil
	default:
		return Scope{}, InvalidScopeError{Value: value}
	}
}
