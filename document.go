// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

// The types in this file are the contract with the document/container
// layer. That layer owns the object graph, cross-reference tables and
// stream compression; this package only ever sees decompressed bytes.

// FontInfo describes one font referenced from a resource dictionary.
type FontInfo struct {
	// BaseFont is the symbolic font name, the key for glyph observation.
	BaseFont string

	// Encoding is the named simple encoding ("WinAnsiEncoding",
	// "MacRomanEncoding"), or empty if the font declares none.
	Encoding string

	// ToUnicode holds the decompressed bytes of the font's embedded
	// byte-to-Unicode mapping program, or nil. Parsed lazily, once per
	// distinct program per run.
	ToUnicode []byte
}

// Resources is a page's resource dictionary, restricted to the parts this
// package consumes. Named resources may be declared on an ancestor node;
// lookups walk the Parent chain.
type Resources struct {
	Fonts  map[string]*FontInfo
	Parent *Resources
}

// Font resolves a font name through the resource dictionary chain.
// It returns nil if the name is not declared anywhere on the chain.
func (r *Resources) Font(name string) *FontInfo {
	for res := r; res != nil; res = res.Parent {
		if f, ok := res.Fonts[name]; ok && f != nil {
			return f
		}
	}
	return nil
}

// Page carries one page's already-decompressed content streams. Multiple
// streams are treated as logically concatenated.
type Page struct {
	Contents  [][]byte
	Resources *Resources
}

// Document is the unit of processing. Pages are in document order; Info is
// the Document Information Dictionary as decoded text values; XMP is the
// raw XML metadata stream, or nil if the document has none.
type Document struct {
	Pages []Page
	Info  map[string]string
	XMP   []byte
}

// PageStream is one rebuilt content stream produced for a page. The
// container layer replaces the page's existing stream(s) with it and
// updates the stream's declared length.
type PageStream struct {
	Data   []byte
	Length int
}
