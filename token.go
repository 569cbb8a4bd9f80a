// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"fmt"

	"github.com/sassoftware/pdf-redact/logger"
)

// TokenKind identifies the variant held by a Token.
type TokenKind int

const (
	KindNumber TokenKind = iota
	KindName
	KindOperator
	KindString
	KindArray
	KindDict
)

// DictEntry is one ordered name/value pair of a dictionary token.
type DictEntry struct {
	Key   string
	Value *Token
}

// A Token is one lexed element of a content stream. Arrays and
// dictionaries are collapsed into single tokens; their nested content is
// reachable through Arr/Dict, never yielded standalone.
//
// Lexeme holds the token's exact source bytes (delimiters included) and
// pre holds the whitespace/comment bytes that preceded it, so that an
// untouched token re-serializes byte-identically.
type Token struct {
	Kind   TokenKind
	Lexeme []byte
	pre    []byte

	Num  string // raw numeric text, emitted verbatim
	Name string // without the leading slash, hash escapes resolved
	Op   string
	Str  []byte // string content bytes, escapes resolved

	Arr  []*Token
	Dict []DictEntry

	// Text is set when a string token has been promoted to a mutable
	// redaction unit by the text layer builder.
	Text *TextToken
}

// IsOperator reports whether t is the bare keyword op.
func (t *Token) IsOperator(op string) bool {
	return t != nil && t.Kind == KindOperator && t.Op == op
}

// ContentTokens is the tokenized form of one page's content.
type ContentTokens struct {
	Tokens []*Token

	// trailing preserves source bytes after the last token.
	trailing []byte
}

// PDF whitespace per ISO 32000-1 §7.2.2: NUL, TAB, LF, FF, CR, SP.
func isWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return isWhitespace(c)
	}
}

// lexer walks raw content-stream bytes. The same lexer processes page
// content and embedded CMap programs.
type lexer struct {
	src []byte
	pos int
}

// itemType distinguishes scalar tokens from the structural brackets that
// the grouping layer consumes.
type itemType int

const (
	itemEOF itemType = iota
	itemToken
	itemArrayOpen
	itemArrayClose
	itemDictOpen
	itemDictClose
)

func (l *lexer) skipGap() []byte {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isWhitespace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.src) && l.src[l.pos] != '\r' && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}
	return l.src[start:l.pos]
}

// next returns the next lexical item. Bracket items carry no token.
func (l *lexer) next() (itemType, *Token, error) {
	pre := l.skipGap()
	if l.pos >= len(l.src) {
		return itemEOF, nil, nil
	}
	start := l.pos
	c := l.src[l.pos]

	finish := func(t *Token) (itemType, *Token, error) {
		t.Lexeme = l.src[start:l.pos]
		t.pre = pre
		return itemToken, t, nil
	}

	switch {
	case c == '<' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '<':
		l.pos += 2
		return itemDictOpen, nil, nil
	case c == '>' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '>':
		l.pos += 2
		return itemDictClose, nil, nil
	case c == '[':
		l.pos++
		return itemArrayOpen, nil, nil
	case c == ']':
		l.pos++
		return itemArrayClose, nil, nil
	case c == '(':
		s, err := l.scanLiteralString()
		if err != nil {
			return itemEOF, nil, err
		}
		return finish(&Token{Kind: KindString, Str: s})
	case c == '<':
		s, err := l.scanHexString()
		if err != nil {
			return itemEOF, nil, err
		}
		return finish(&Token{Kind: KindString, Str: s})
	case c == '/':
		return finish(&Token{Kind: KindName, Name: l.scanName()})
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return finish(&Token{Kind: KindNumber, Num: l.scanNumber()})
	case c == '>' || c == ')' || c == '{' || c == '}':
		// Stray delimiters become one-byte operator tokens so a later
		// close-bracket check can reject them in context.
		l.pos++
		return finish(&Token{Kind: KindOperator, Op: string(c)})
	default:
		return finish(&Token{Kind: KindOperator, Op: l.scanKeyword()})
	}
}

// scanLiteralString consumes a (...) string, resolving escapes, octal
// codes, line continuations and balanced nested parentheses (PDF 7.3.4.2).
func (l *lexer) scanLiteralString() ([]byte, error) {
	l.pos++ // skip '('
	var out []byte
	depth := 1
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return nil, parseErrorf("unterminated literal string")
			}
			esc := l.src[l.pos]
			switch {
			case esc == '\r':
				l.pos++
				if l.pos < len(l.src) && l.src[l.pos] == '\n' {
					l.pos++
				}
			case esc == '\n':
				l.pos++
			case esc >= '0' && esc <= '7':
				val := int(esc - '0')
				l.pos++
				for k := 0; k < 2 && l.pos < len(l.src); k++ {
					d := l.src[l.pos]
					if d < '0' || d > '7' {
						break
					}
					val = val<<3 + int(d-'0')
					l.pos++
				}
				out = append(out, byte(val))
			default:
				out = append(out, translateEscape(esc))
				l.pos++
			}
		case '(':
			depth++
			out = append(out, c)
			l.pos++
		case ')':
			depth--
			l.pos++
			if depth == 0 {
				return out, nil
			}
			out = append(out, c)
		default:
			out = append(out, c)
			l.pos++
		}
	}
	return nil, parseErrorf("unterminated literal string")
}

func translateEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	default:
		return c
	}
}

func (l *lexer) scanHexString() ([]byte, error) {
	l.pos++ // skip '<'
	var nibbles []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '>' {
			l.pos++
			if len(nibbles)%2 == 1 {
				nibbles = append(nibbles, '0')
			}
			out := make([]byte, 0, len(nibbles)/2)
			for i := 0; i < len(nibbles); i += 2 {
				out = append(out, fromHex(nibbles[i])<<4|fromHex(nibbles[i+1]))
			}
			return out, nil
		}
		if !isWhitespace(c) {
			nibbles = append(nibbles, c)
		}
		l.pos++
	}
	return nil, parseErrorf("unterminated hex string")
}

func fromHex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}

func (l *lexer) scanName() string {
	l.pos++ // skip '/'
	var out []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isDelimiter(c) {
			break
		}
		if c == '#' && l.pos+2 < len(l.src) {
			out = append(out, fromHex(l.src[l.pos+1])<<4|fromHex(l.src[l.pos+2]))
			l.pos += 3
			continue
		}
		out = append(out, c)
		l.pos++
	}
	return string(out)
}

func (l *lexer) scanNumber() string {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			l.pos++
			continue
		}
		break
	}
	return string(l.src[start:l.pos])
}

func (l *lexer) scanKeyword() string {
	start := l.pos
	for l.pos < len(l.src) {
		if isDelimiter(l.src[l.pos]) {
			break
		}
		l.pos++
	}
	return string(l.src[start:l.pos])
}

// Tokenize lexes a content stream and collapses arrays and dictionaries
// into single tokens. Nested content becomes the value of the enclosing
// token; tokens are yielded only at nesting depth zero.
func Tokenize(src []byte) (*ContentTokens, error) {
	logger.Debug(fmt.Sprintf("Tokenize: %d bytes", len(src)))
	l := &lexer{src: src}

	type accum struct {
		dict    bool
		start   int
		pre     []byte
		content []*Token
	}
	var stack []*accum
	out := &ContentTokens{}

	place := func(t *Token) {
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			top.content = append(top.content, t)
			return
		}
		out.Tokens = append(out.Tokens, t)
	}

	for {
		gapStart := l.pos
		it, tok, err := l.next()
		if err != nil {
			return nil, err
		}
		switch it {
		case itemEOF:
			if len(stack) > 0 {
				return nil, parseErrorf("unterminated array or dictionary")
			}
			out.trailing = l.src[gapStart:]
			return out, nil
		case itemToken:
			place(tok)
		case itemArrayOpen, itemDictOpen:
			pre := l.src[gapStart : l.pos-1]
			start := l.pos - 1
			if it == itemDictOpen {
				pre = l.src[gapStart : l.pos-2]
				start = l.pos - 2
			}
			stack = append(stack, &accum{dict: it == itemDictOpen, start: start, pre: pre})
		case itemArrayClose, itemDictClose:
			if len(stack) == 0 {
				return nil, parseErrorf("close bracket with no open bracket")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.dict != (it == itemDictClose) {
				return nil, parseErrorf("mismatched bracket pair")
			}
			var t *Token
			if top.dict {
				entries, err := pairDict(top.content)
				if err != nil {
					return nil, err
				}
				t = &Token{Kind: KindDict, Dict: entries}
			} else {
				t = &Token{Kind: KindArray, Arr: top.content}
			}
			t.Lexeme = l.src[top.start:l.pos]
			t.pre = top.pre
			place(t)
		}
	}
}

// pairDict re-groups a dictionary's flat content into key/value pairs.
func pairDict(content []*Token) ([]DictEntry, error) {
	if len(content)%2 != 0 {
		return nil, parseErrorf("dictionary with odd element count %d", len(content))
	}
	entries := make([]DictEntry, 0, len(content)/2)
	for i := 0; i < len(content); i += 2 {
		if content[i].Kind != KindName {
			return nil, parseErrorf("dictionary key is not a name")
		}
		entries = append(entries, DictEntry{Key: content[i].Name, Value: content[i+1]})
	}
	return entries, nil
}
