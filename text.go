// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"bytes"
	"fmt"

	"github.com/sassoftware/pdf-redact/logger"
)

// A TextToken is a string token promoted to a mutable redaction unit.
// Raw and Original never change after construction; re-serializing a
// token whose Value still equals Original reproduces the raw source
// bytes unchanged.
type TextToken struct {
	Raw      []byte // original string-content bytes
	Original string // decoded once, immutable
	Value    string // current text, mutated by the redaction engine
	Font     *FontInfo
}

// Changed reports whether the redaction engine rewrote this token.
func (tt *TextToken) Changed() bool { return tt.Value != tt.Original }

// posEntry correlates a run of the flattened text with the token that
// produced it. Lengths are the original decoded byte lengths; their sum
// equals the flattened text length.
type posEntry struct {
	length int
	tok    *TextToken
}

// builtPage is the text-layer output for one page.
type builtPage struct {
	tokens *ContentTokens
	text   string
	posmap []posEntry
}

// Text-showing operators. Any token matching one of these keywords is
// always treated as the operator, never as an operand of something we
// don't recognize; the occasional false positive is an accepted tradeoff
// since operand counts of unknown operators are unknowable.
func isShowTextOp(op string) bool {
	return op == "Tj" || op == "'" || op == "\""
}

// buildTextLayer tokenizes one page's (logically concatenated) content
// streams and flattens every text-showing operand into Unicode, tracking
// the active font as it goes. The current font starts unknown on every
// page and is re-resolved through the resource chain on each Tf.
func buildTextLayer(rctx *runContext, page Page) (*builtPage, error) {
	src := joinStreams(page.Contents)
	ct, err := Tokenize(src)
	if err != nil {
		return nil, err
	}

	bp := &builtPage{tokens: ct}
	var textBuf bytes.Buffer
	var currentFont *FontInfo

	promote := func(t *Token) error {
		if t.Text != nil {
			return nil
		}
		decoded, err := rctx.decodeText(t.Str, currentFont)
		if err != nil {
			return err
		}
		t.Text = &TextToken{
			Raw:      t.Str,
			Original: decoded,
			Value:    decoded,
			Font:     currentFont,
		}
		rctx.observe(currentFont, decoded)
		return nil
	}

	show := func(tt *TextToken) {
		// Empty operands stay in the token list but contribute nothing
		// to the flattened text or the position map.
		if tt.Value == "" {
			return
		}
		textBuf.WriteString(tt.Value)
		bp.posmap = append(bp.posmap, posEntry{length: len(tt.Value), tok: tt})
	}

	var prev, prevPrev *Token
	for _, tok := range ct.Tokens {
		if tok.Kind == KindString {
			if err := promote(tok); err != nil {
				return nil, err
			}
		}

		if tok.Kind == KindOperator {
			switch {
			case isShowTextOp(tok.Op):
				if prev != nil && prev.Text != nil {
					show(prev.Text)
				}
			case tok.Op == "TJ":
				if prev != nil && prev.Kind == KindArray {
					for _, el := range prev.Arr {
						// spacing numbers are interleaved with the strings
						if el.Kind != KindString {
							continue
						}
						if err := promote(el); err != nil {
							return nil, err
						}
						show(el.Text)
					}
				}
			case tok.Op == "Tf":
				if prevPrev != nil && prevPrev.Kind == KindName {
					currentFont = page.Resources.Font(prevPrev.Name)
					if currentFont == nil {
						logger.Debug(fmt.Sprintf("buildTextLayer: font %q not found in resource chain", prevPrev.Name))
					}
				}
			}
		}

		prevPrev, prev = prev, tok
	}

	bp.text = textBuf.String()
	logger.Debug(fmt.Sprintf("buildTextLayer: %d tokens, %d text bytes", len(ct.Tokens), len(bp.text)), true)
	return bp, nil
}

// joinStreams concatenates a page's content streams with an intervening
// newline, per the convention that multiple streams form one logical
// stream.
func joinStreams(contents [][]byte) []byte {
	if len(contents) == 1 {
		return contents[0]
	}
	return bytes.Join(contents, []byte("\n"))
}
