// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"fmt"

	"github.com/sassoftware/pdf-redact/logger"
)

// A CMap is the parsed form of an embedded byte-to-Unicode mapping
// program: a bidirectional table between fixed-width byte codes and
// Unicode strings. Code width is fixed per CMap, one or two bytes.
type CMap struct {
	width       int
	toUnicode   map[string]string
	fromUnicode map[string]string
}

// parseCMap lexes a decompressed CMap program with the content-stream
// tokenizer and interprets its directive pairs. Mapping directives are
// processed only between begincmap and endcmap. Unknown directives are
// skipped, not fatal.
func parseCMap(program []byte) (*CMap, error) {
	logger.Debug(fmt.Sprintf("parseCMap: program of %d bytes", len(program)), true)
	ct, err := Tokenize(program)
	if err != nil {
		return nil, err
	}

	m := &CMap{
		toUnicode:   make(map[string]string),
		fromUnicode: make(map[string]string),
	}

	inCMap := false
	var operands []*Token

	for _, tok := range ct.Tokens {
		if tok.IsOperator("begincmap") {
			inCMap = true
			operands = operands[:0]
			continue
		}
		if tok.IsOperator("endcmap") {
			inCMap = false
			continue
		}
		if !inCMap {
			continue
		}

		if tok.Kind != KindOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.Op {
		case "begincodespacerange", "begincidrange", "beginbfrange",
			"begincidchar", "beginbfchar", "beginnotdefrange":
			operands = operands[:0]

		case "endcodespacerange":
			if err := m.setCodespace(operands); err != nil {
				return nil, err
			}
			operands = operands[:0]

		case "endcidrange", "endbfrange":
			for _, tr := range chunkTriples(operands) {
				lo, hi, dst := tr[0], tr[1], tr[2]
				if lo.Kind != KindString || hi.Kind != KindString {
					continue
				}
				codeLo := codeToInt(lo.Str)
				codeHi := codeToInt(hi.Str)
				for code := codeLo; code <= codeHi; code++ {
					if err := m.addMapping(code, dst, code-codeLo); err != nil {
						return nil, err
					}
				}
			}
			operands = operands[:0]

		case "endcidchar", "endbfchar":
			for _, pr := range chunkPairs(operands) {
				code, dst := pr[0], pr[1]
				if code.Kind != KindString {
					continue
				}
				if err := m.addMapping(codeToInt(code.Str), dst, 0); err != nil {
					return nil, err
				}
			}
			operands = operands[:0]

		case "endnotdefrange":
			// recognized and discarded
			operands = operands[:0]

		case "def":
			// name/value definition; not needed for text mapping
			if len(operands) >= 2 {
				operands = operands[2:]
			}

		default:
			// usecmap, findresource, begin, end: skipped
		}
	}

	logger.Debug(fmt.Sprintf("parseCMap: width=%d entries=%d", m.width, len(m.toUnicode)))
	return m, nil
}

// setCodespace fixes the CMap's code width from the first low/high pair.
func (m *CMap) setCodespace(operands []*Token) error {
	if len(operands) < 2 {
		return nil
	}
	lo, hi := operands[0], operands[1]
	if lo.Kind != KindString || hi.Kind != KindString {
		return nil
	}
	if len(lo.Str) != len(hi.Str) {
		return parseErrorf("codespace range bounds differ in width (%d vs %d)", len(lo.Str), len(hi.Str))
	}
	w := len(lo.Str)
	if w != 1 && w != 2 {
		return parseErrorf("unsupported codespace width %d", w)
	}
	m.width = w
	return nil
}

// addMapping records code -> destination, and the reverse entry. The
// later-defined entry wins on reverse collisions.
func (m *CMap) addMapping(code int, dst *Token, offset int) error {
	var codeBytes []byte
	switch m.width {
	case 1:
		codeBytes = []byte{byte(code)}
	case 2:
		codeBytes = []byte{byte(code / 256), byte(code & 255)}
	default:
		return parseErrorf("mapping directive before codespacerange")
	}

	// A range destination may be an array: each code in the range takes
	// its own element verbatim.
	if dst != nil && dst.Kind == KindArray {
		if offset < 0 || offset >= len(dst.Arr) {
			return nil
		}
		dst = dst.Arr[offset]
		offset = 0
	}
	if dst == nil || dst.Kind != KindString {
		return nil
	}

	// The destination string is big-endian two-byte Unicode scalars.
	var runes []rune
	b := dst.Str
	for i := 0; i+1 < len(b); i += 2 {
		runes = append(runes, rune(int(b[i])*256+int(b[i+1])))
	}
	// Within a string-destination range only the final scalar advances.
	if offset > 0 && len(runes) > 0 {
		runes[len(runes)-1] += rune(offset)
	}
	char := string(runes)

	m.toUnicode[string(codeBytes)] = char
	m.fromUnicode[char] = string(codeBytes)
	return nil
}

func codeToInt(b []byte) int {
	n := 0
	for _, c := range b {
		n = n*256 + int(c)
	}
	return n
}

// Decode translates raw bytes into Unicode. At each position a one-byte
// lookup is tried before a two-byte lookup; an unmapped position emits a
// "?" placeholder and advances one byte. Not a longest-match scan.
func (m *CMap) Decode(raw []byte) string {
	var out []byte
	i := 0
	for i < len(raw) {
		if c, ok := m.toUnicode[string(raw[i:i+1])]; ok {
			out = append(out, c...)
			i++
			continue
		}
		if i+2 <= len(raw) {
			if c, ok := m.toUnicode[string(raw[i:i+2])]; ok {
				out = append(out, c...)
				i += 2
				continue
			}
		}
		out = append(out, '?')
		i++
	}
	return string(out)
}

// Encode maps Unicode text back to font-native bytes through the reverse
// table. Characters without a reverse entry are dropped; glyph fallback
// happens before this layer.
func (m *CMap) Encode(s string) []byte {
	var out []byte
	for _, r := range s {
		if b, ok := m.fromUnicode[string(r)]; ok {
			out = append(out, b...)
		}
	}
	return out
}

func chunkPairs(toks []*Token) [][2]*Token {
	var out [][2]*Token
	for i := 0; i+1 < len(toks); i += 2 {
		out = append(out, [2]*Token{toks[i], toks[i+1]})
	}
	return out
}

func chunkTriples(toks []*Token) [][3]*Token {
	var out [][3]*Token
	for i := 0; i+2 < len(toks); i += 3 {
		out = append(out, [3]*Token{toks[i], toks[i+1], toks[i+2]})
	}
	return out
}
