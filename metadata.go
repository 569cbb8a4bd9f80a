// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"strings"
	"time"
	"unicode/utf16"
)

// MetadataTransform rewrites one Document Information field. present is
// false when the field does not exist yet; returning keep=false deletes
// the field (or leaves it absent).
type MetadataTransform func(value string, present bool) (result string, keep bool)

// MetadataFilters maps field names (Title, Author, CreationDate, ...) to
// ordered transform chains. Two names are reserved: "DEFAULT" applies to
// every field that has no chain of its own, and "ALL" is appended to
// every field's chain.
type MetadataFilters map[string][]MetadataTransform

const (
	metaDefault = "DEFAULT"
	metaAll     = "ALL"
)

// updateMetadata runs the filter chains over doc.Info in place. Fields
// named only by a filter are still visited so a transform can insert a
// value into a document that lacks it.
func updateMetadata(doc *Document, filters MetadataFilters) {
	if len(filters) == 0 {
		return
	}
	if doc.Info == nil {
		doc.Info = make(map[string]string)
	}
	keys := make(map[string]struct{}, len(doc.Info)+len(filters))
	for k := range doc.Info {
		keys[k] = struct{}{}
	}
	for k := range filters {
		if k != metaDefault && k != metaAll {
			keys[k] = struct{}{}
		}
	}
	for key := range keys {
		chain, ok := filters[key]
		if !ok {
			chain = filters[metaDefault]
		}
		chain = append(chain[:len(chain):len(chain)], filters[metaAll]...)
		if len(chain) == 0 {
			continue
		}

		raw, present := doc.Info[key]
		value := decodeTextString(raw)
		keep := present
		for _, f := range chain {
			value, keep = f(value, keep)
			if !keep {
				value = ""
			}
		}
		if keep {
			doc.Info[key] = encodeTextString(value)
		} else {
			delete(doc.Info, key)
		}
	}
}

// decodeTextString interprets a PDF text string held as raw bytes in a
// Go string. A UTF-16BE byte order mark selects UTF-16BE; everything
// else is treated as Latin-1 (a close stand-in for PDFDocEncoding).
func decodeTextString(raw string) string {
	if strings.HasPrefix(raw, "\xFE\xFF") {
		b := []byte(raw[2:])
		units := make([]uint16, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}
	return latin1Decode([]byte(raw))
}

// encodeTextString is the inverse: Latin-1 when every rune fits,
// otherwise UTF-16BE with a byte order mark.
func encodeTextString(s string) string {
	fits := true
	for _, r := range s {
		if r > 0xFF {
			fits = false
			break
		}
	}
	if fits {
		b := make([]byte, 0, len(s))
		for _, r := range s {
			b = append(b, byte(r))
		}
		return string(b)
	}
	var sb strings.Builder
	sb.WriteString("\xFE\xFF")
	for _, u := range utf16.Encode([]rune(s)) {
		sb.WriteByte(byte(u >> 8))
		sb.WriteByte(byte(u))
	}
	return sb.String()
}

// FormatDate renders t in the PDF date format used by CreationDate and
// ModDate, e.g. D:20260830120000+00'00.
func FormatDate(t time.Time) string {
	s := t.Format("20060102150405-0700")
	if len(s) == 19 {
		s = s[:17] + "'" + s[17:]
	}
	return "D:" + s
}
