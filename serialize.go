// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"bytes"
	"fmt"

	"github.com/sassoftware/pdf-redact/logger"
)

// serializePage re-emits a page's tokens as one content stream. Tokens
// whose subtree was not touched by redaction are copied from their raw
// source bytes, preceding whitespace included, so an untouched page
// round-trips byte-identically. Touched tokens are rebuilt: changed
// strings through the reverse encoder, containers recursively.
func serializePage(rctx *runContext, ct *ContentTokens) ([]byte, error) {
	var buf bytes.Buffer
	for _, tok := range ct.Tokens {
		buf.Write(tok.pre)
		if !subtreeChanged(tok) {
			buf.Write(tok.Lexeme)
			continue
		}
		if err := writeToken(&buf, rctx, tok); err != nil {
			return nil, err
		}
	}
	buf.Write(ct.trailing)
	logger.Debug(fmt.Sprintf("serializePage: emitted %d bytes", buf.Len()), true)
	return buf.Bytes(), nil
}

// subtreeChanged reports whether tok or any nested token carries a
// rewritten text value.
func subtreeChanged(tok *Token) bool {
	switch tok.Kind {
	case KindString:
		return tok.Text != nil && tok.Text.Changed()
	case KindArray:
		for _, el := range tok.Arr {
			if subtreeChanged(el) {
				return true
			}
		}
	case KindDict:
		for _, e := range tok.Dict {
			if subtreeChanged(e.Value) {
				return true
			}
		}
	}
	return false
}

func writeToken(buf *bytes.Buffer, rctx *runContext, tok *Token) error {
	switch tok.Kind {
	case KindString:
		if tok.Text != nil && tok.Text.Changed() {
			raw, err := rctx.encodeToken(tok.Text)
			if err != nil {
				return err
			}
			writeLiteralString(buf, raw)
			return nil
		}
		buf.Write(tok.Lexeme)
	case KindArray:
		buf.WriteByte('[')
		for _, el := range tok.Arr {
			buf.WriteByte(' ')
			if !subtreeChanged(el) && len(el.Lexeme) > 0 {
				buf.Write(el.Lexeme)
				continue
			}
			if err := writeToken(buf, rctx, el); err != nil {
				return err
			}
		}
		buf.WriteString(" ]")
	case KindDict:
		buf.WriteString("<<")
		for _, e := range tok.Dict {
			buf.WriteString(" /")
			buf.WriteString(e.Key)
			buf.WriteByte(' ')
			if !subtreeChanged(e.Value) && len(e.Value.Lexeme) > 0 {
				buf.Write(e.Value.Lexeme)
				continue
			}
			if err := writeToken(buf, rctx, e.Value); err != nil {
				return err
			}
		}
		buf.WriteString(" >>")
	case KindNumber:
		buf.WriteString(tok.Num)
	case KindName:
		if len(tok.Lexeme) > 0 {
			buf.Write(tok.Lexeme)
			return nil
		}
		buf.WriteByte('/')
		buf.WriteString(tok.Name)
	case KindOperator:
		buf.WriteString(tok.Op)
	}
	return nil
}

// writeLiteralString emits raw as a (...) string, escaping the bytes
// that would break the delimiting.
func writeLiteralString(buf *bytes.Buffer, raw []byte) {
	buf.WriteByte('(')
	for _, b := range raw {
		switch b {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(b)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			buf.WriteByte(b)
		}
	}
	buf.WriteByte(')')
}
