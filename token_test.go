// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_SimpleStream(t *testing.T) {
	ct, err := Tokenize([]byte("BT /F1 12 Tf (Hi) Tj ET"))
	require.NoError(t, err)
	require.Len(t, ct.Tokens, 7)

	assert.True(t, ct.Tokens[0].IsOperator("BT"))
	assert.Equal(t, KindName, ct.Tokens[1].Kind)
	assert.Equal(t, "F1", ct.Tokens[1].Name)
	assert.Equal(t, KindNumber, ct.Tokens[2].Kind)
	assert.Equal(t, "12", ct.Tokens[2].Num)
	assert.True(t, ct.Tokens[3].IsOperator("Tf"))
	assert.Equal(t, KindString, ct.Tokens[4].Kind)
	assert.Equal(t, []byte("Hi"), ct.Tokens[4].Str)
	assert.Equal(t, []byte("(Hi)"), ct.Tokens[4].Lexeme)
	assert.True(t, ct.Tokens[5].IsOperator("Tj"))
	assert.True(t, ct.Tokens[6].IsOperator("ET"))
}

func TestTokenize_LiteralStringEscapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"escaped delimiters", `(a\(b\)c)`, "a(b)c"},
		{"escaped backslash", `(a\\b)`, `a\b`},
		{"control escapes", `(x\n\r\t\b\fy)`, "x\n\r\t\b\fy"},
		{"octal", `(\101\102\103)`, "ABC"},
		{"short octal stops at non-digit", `(\12X)`, "\nX"},
		{"nested balanced parens", `(a(b(c))d)`, "a(b(c))d"},
		{"line continuation", "(ab\\\ncd)", "abcd"},
		{"unknown escape keeps char", `(\q)`, "q"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ct, err := Tokenize([]byte(tc.in))
			require.NoError(t, err)
			require.Len(t, ct.Tokens, 1)
			assert.Equal(t, []byte(tc.want), ct.Tokens[0].Str)
		})
	}
}

func TestTokenize_HexString(t *testing.T) {
	ct, err := Tokenize([]byte("<48 65 6C6C 6F>"))
	require.NoError(t, err)
	require.Len(t, ct.Tokens, 1)
	assert.Equal(t, []byte("Hello"), ct.Tokens[0].Str)

	// Odd nibble count pads a trailing zero.
	ct, err = Tokenize([]byte("<486>"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x48, 0x60}, ct.Tokens[0].Str)
}

func TestTokenize_NameHashEscape(t *testing.T) {
	ct, err := Tokenize([]byte("/A#42C"))
	require.NoError(t, err)
	require.Len(t, ct.Tokens, 1)
	assert.Equal(t, "ABC", ct.Tokens[0].Name)
}

func TestTokenize_ArrayCollapsed(t *testing.T) {
	ct, err := Tokenize([]byte("[ (A) -20 (B) ] TJ"))
	require.NoError(t, err)
	require.Len(t, ct.Tokens, 2)

	arr := ct.Tokens[0]
	assert.Equal(t, KindArray, arr.Kind)
	require.Len(t, arr.Arr, 3)
	assert.Equal(t, []byte("A"), arr.Arr[0].Str)
	assert.Equal(t, "-20", arr.Arr[1].Num)
	assert.Equal(t, []byte("B"), arr.Arr[2].Str)
	assert.Equal(t, []byte("[ (A) -20 (B) ]"), arr.Lexeme)
	assert.True(t, ct.Tokens[1].IsOperator("TJ"))
}

func TestTokenize_DictCollapsed(t *testing.T) {
	ct, err := Tokenize([]byte("<< /Type /Page /Kids [ 1 2 ] >>"))
	require.NoError(t, err)
	require.Len(t, ct.Tokens, 1)

	d := ct.Tokens[0]
	require.Equal(t, KindDict, d.Kind)
	require.Len(t, d.Dict, 2)
	assert.Equal(t, "Type", d.Dict[0].Key)
	assert.Equal(t, "Page", d.Dict[0].Value.Name)
	assert.Equal(t, "Kids", d.Dict[1].Key)
	assert.Equal(t, KindArray, d.Dict[1].Value.Kind)
	assert.Len(t, d.Dict[1].Value.Arr, 2)
}

func TestTokenize_CommentsSkipped(t *testing.T) {
	ct, err := Tokenize([]byte("% leading comment\n(A) Tj % trailing\n(B) Tj"))
	require.NoError(t, err)
	require.Len(t, ct.Tokens, 4)
	assert.Equal(t, []byte("A"), ct.Tokens[0].Str)
	assert.Equal(t, []byte("B"), ct.Tokens[2].Str)
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"close with empty stack", "1 2 ]"},
		{"mismatched pair", "[ 1 2 >>"},
		{"odd dictionary count", "<< /K >>"},
		{"dictionary key not a name", "<< (K) 1 >>"},
		{"unterminated array", "[ 1 2"},
		{"unterminated dictionary", "<< /K 1"},
		{"unterminated literal string", "(abc"},
		{"unterminated hex string", "<48"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize([]byte(tc.in))
			require.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}
