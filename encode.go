// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sassoftware/pdf-redact/logger"
	"golang.org/x/text/encoding/charmap"
)

// encodeToken converts a mutated token's current value back into
// font-native bytes. Characters the font never rendered in the original
// document are first substituted with the configured replacement glyphs
// (the first one that was observed wins) or dropped when none was.
func (c *runContext) encodeToken(tt *TextToken) ([]byte, error) {
	value := tt.Value
	if tt.Font != nil {
		if set := c.glyphSet(tt.Font.BaseFont); set != nil {
			value = substituteGlyphs(value, set, c.cfg.ReplacementGlyphs)
		}
	}

	switch {
	case tt.Font == nil:
		return latin1Encode(value)
	case len(tt.Font.ToUnicode) > 0:
		m, err := c.cmapFor(tt.Font)
		if err != nil {
			return nil, err
		}
		return m.Encode(value), nil
	case tt.Font.Encoding == "WinAnsiEncoding":
		return byteEncode(value, charmap.Windows1252)
	case tt.Font.Encoding == "MacRomanEncoding":
		return byteEncode(value, charmap.Macintosh)
	default:
		return nil, encodingErrorf("cannot encode text for font %q with encoding %q",
			tt.Font.BaseFont, tt.Font.Encoding)
	}
}

// substituteGlyphs keeps each character that occurred in the original
// text of the font, replaces the rest with the first fallback glyph that
// did occur, and drops characters with no usable fallback.
func substituteGlyphs(s string, seen map[rune]struct{}, fallbacks []string) string {
	var b strings.Builder
	for _, r := range s {
		if _, ok := seen[r]; ok {
			b.WriteRune(r)
			continue
		}
		replaced := false
		for _, fb := range fallbacks {
			fr, _ := utf8.DecodeRuneInString(fb)
			if _, ok := seen[fr]; ok {
				b.WriteRune(fr)
				replaced = true
				break
			}
		}
		if !replaced {
			logger.Debug(fmt.Sprintf("substituteGlyphs: dropping %q, no observed fallback", r))
		}
	}
	return b.String()
}

func byteEncode(s string, cm *charmap.Charmap) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := cm.EncodeRune(r)
		if !ok {
			return nil, encodingErrorf("character %q not representable in %s", r, cm)
		}
		out = append(out, b)
	}
	return out, nil
}
