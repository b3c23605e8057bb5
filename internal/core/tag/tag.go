// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tag manages free-form labels and their association with listings.

Tags are created on demand from names, attached to listings through the
listing_tags junction, and reported on through usage analytics. Names are
stored case-sensitively; renames reject case-insensitive collisions.
*/
package tag

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/yarnswap/internal/platform/apperr"
)

// MaxNameLength matches the tags.name column width.
const MaxNameLength = 50

// Field names used in validation errors.
const (
	FieldName  = "name"
	FieldNames = "names"
	FieldTagID = "tag_id"
	FieldLimit = "limit"
)

// ErrDuplicateName is returned when a rename collides with another tag.
var ErrDuplicateName = apperr.New(http.StatusConflict, apperr.CodeDuplicateName, "Tag name already in use")

// # Core Entities

// Tag is a label attachable to listings.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Usage is a tag together with the number of listings carrying it.
type Usage struct {
	Tag
	Count int `json:"count"`
}

// UsageShare extends [Usage] with the share of all listings carrying the tag.
type UsageShare struct {
	Usage
	Percentage float64 `json:"percentage"`
}

// # Name Handling

// NormalizeName trims surrounding whitespace and applies Unicode NFC so
// visually identical names map to one row.
func NormalizeName(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// DecodeName percent-decodes a name taken from a URL (so "%23film" becomes
// "#film") and normalises it. Malformed escapes leave the raw text in place.
func DecodeName(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return NormalizeName(decoded)
}
