// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"fmt"
	"sync"

	"github.com/sassoftware/pdf-redact/logger"
	"golang.org/x/text/encoding/charmap"
)

// runContext carries the document-scoped caches: parsed CMaps keyed by
// program identity and glyph observations keyed by BaseFont. Both are
// commutative merges, so a mutex is enough when pages are built in
// parallel. A runContext lives for one document run and is discarded.
type runContext struct {
	cfg *Config

	mu     sync.Mutex
	cmaps  map[string]*CMap
	glyphs map[string]map[rune]struct{}
}

func newRunContext(cfg *Config) *runContext {
	return &runContext{
		cfg:    cfg,
		cmaps:  make(map[string]*CMap),
		glyphs: make(map[string]map[rune]struct{}),
	}
}

// cmapFor returns the parsed mapping program for font, building it on
// first use and caching by program identity for the rest of the run.
func (c *runContext) cmapFor(font *FontInfo) (*CMap, error) {
	key := string(font.ToUnicode)
	c.mu.Lock()
	m, ok := c.cmaps[key]
	c.mu.Unlock()
	if ok {
		return m, nil
	}
	m, err := parseCMap(font.ToUnicode)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if prev, ok := c.cmaps[key]; ok {
		m = prev
	} else {
		c.cmaps[key] = m
	}
	c.mu.Unlock()
	logger.Debug(fmt.Sprintf("cmapFor: parsed mapping program for font %q", font.BaseFont), true)
	return m, nil
}

// observe records that the characters of s occurred in the original text
// of font. Observations accumulate across all pages of the document.
func (c *runContext) observe(font *FontInfo, s string) {
	if font == nil || font.BaseFont == "" {
		return
	}
	c.mu.Lock()
	set, ok := c.glyphs[font.BaseFont]
	if !ok {
		set = make(map[rune]struct{})
		c.glyphs[font.BaseFont] = set
	}
	for _, r := range s {
		set[r] = struct{}{}
	}
	c.mu.Unlock()
}

// glyphSet returns the observation set for a BaseFont, or nil.
func (c *runContext) glyphSet(baseFont string) map[rune]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.glyphs[baseFont]
}

// decodeText converts raw string-operand bytes into Unicode under the
// active font: CMap decode when the font carries a mapping program, a
// named one-byte encoding otherwise, Latin-1 passthrough when no font is
// known. An unrecognized named encoding degrades to a single placeholder
// instead of failing the document.
func (c *runContext) decodeText(raw []byte, font *FontInfo) (string, error) {
	switch {
	case font == nil:
		return latin1Decode(raw), nil
	case len(font.ToUnicode) > 0:
		m, err := c.cmapFor(font)
		if err != nil {
			return "", err
		}
		return m.Decode(raw), nil
	case font.Encoding == "WinAnsiEncoding":
		return byteDecode(raw, charmap.Windows1252), nil
	case font.Encoding == "MacRomanEncoding":
		return byteDecode(raw, charmap.Macintosh), nil
	default:
		logger.Debug(fmt.Sprintf("decodeText: unknown encoding %q for font %q", font.Encoding, font.BaseFont))
		return "?", nil
	}
}

func byteDecode(raw []byte, cm *charmap.Charmap) string {
	r := make([]rune, 0, len(raw))
	for _, b := range raw {
		r = append(r, cm.DecodeByte(b))
	}
	return string(r)
}

func latin1Decode(raw []byte) string {
	r := make([]rune, 0, len(raw))
	for _, b := range raw {
		r = append(r, rune(b))
	}
	return string(r)
}

func latin1Encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, encodingErrorf("character %q not representable in Latin-1", r)
		}
		out = append(out, byte(r))
	}
	return out, nil
}
