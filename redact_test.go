// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokensFor(values ...string) (string, []posEntry) {
	var text string
	var posmap []posEntry
	for _, v := range values {
		tt := &TextToken{Original: v, Value: v}
		text += v
		posmap = append(posmap, posEntry{length: len(v), tok: tt})
	}
	return text, posmap
}

func replaceWith(s string) func(Match) string {
	return func(Match) string { return s }
}

func TestApplyFilters_CrossTokenSplice(t *testing.T) {
	// Two tokens "AB" and "CD"; replacing "BC" with "XYZ" gives the
	// first token a proportional one-character slice and the last token
	// all leftover replacement.
	text, posmap := tokensFor("AB", "CD")
	out := applyFilters(text, posmap, []ContentFilter{{
		Pattern: regexp.MustCompile("BC"),
		Replace: replaceWith("XYZ"),
	}})

	assert.Equal(t, "AXYZD", out)
	assert.Equal(t, "AX", posmap[0].tok.Value)
	assert.Equal(t, "YZD", posmap[1].tok.Value)
}

func TestApplyFilters_SingleTokenSameLength(t *testing.T) {
	text, posmap := tokensFor("Hello SSN 123-45-6789")
	out := applyFilters(text, posmap, []ContentFilter{{
		Pattern: regexp.MustCompile(`\d{3}-\d{2}-\d{4}`),
		Replace: replaceWith("XXX-XX-XXXX"),
	}})

	assert.Equal(t, "Hello SSN XXX-XX-XXXX", out)
	assert.Equal(t, "Hello SSN XXX-XX-XXXX", posmap[0].tok.Value)
}

func TestApplyFilters_MultipleMatchesOneFilter(t *testing.T) {
	text, posmap := tokensFor("a1b", "c2d")
	out := applyFilters(text, posmap, []ContentFilter{{
		Pattern: regexp.MustCompile(`\d`),
		Replace: replaceWith("#"),
	}})

	assert.Equal(t, "a#bc#d", out)
	assert.Equal(t, "a#b", posmap[0].tok.Value)
	assert.Equal(t, "c#d", posmap[1].tok.Value)
}

func TestApplyFilters_LaterFilterSeesEditedText(t *testing.T) {
	text, posmap := tokensFor("secret")
	out := applyFilters(text, posmap, []ContentFilter{
		{Pattern: regexp.MustCompile("secret"), Replace: replaceWith("hidden")},
		{Pattern: regexp.MustCompile("hidden"), Replace: replaceWith("[gone]")},
	})

	assert.Equal(t, "[gone]", out)
	assert.Equal(t, "[gone]", posmap[0].tok.Value)
}

func TestApplyFilters_GrowingAndShrinkingReplacements(t *testing.T) {
	text, posmap := tokensFor("aaa bbb aaa")
	out := applyFilters(text, posmap, []ContentFilter{{
		Pattern: regexp.MustCompile("aaa"),
		Replace: replaceWith("x"),
	}})

	assert.Equal(t, "x bbb x", out)
	assert.Equal(t, "x bbb x", posmap[0].tok.Value)

	text, posmap = tokensFor("aaa bbb aaa")
	out = applyFilters(text, posmap, []ContentFilter{{
		Pattern: regexp.MustCompile("aaa"),
		Replace: replaceWith("AAAAA"),
	}})

	assert.Equal(t, "AAAAA bbb AAAAA", out)
	assert.Equal(t, "AAAAA bbb AAAAA", posmap[0].tok.Value)
}

func TestApplyFilters_LaterFilterAfterShrinkingFilter(t *testing.T) {
	// The first filter shortens a token, so the second filter's matches
	// line up with the tokens only if the cursor lengths are rebuilt
	// between passes.
	text, posmap := tokensFor("aaa", "bbb")
	out := applyFilters(text, posmap, []ContentFilter{
		{Pattern: regexp.MustCompile("aaa"), Replace: replaceWith("a")},
		{Pattern: regexp.MustCompile("bbb"), Replace: replaceWith("X")},
	})

	assert.Equal(t, "aX", out)
	assert.Equal(t, "a", posmap[0].tok.Value)
	assert.Equal(t, "X", posmap[1].tok.Value)
}

func TestApplyFilters_LaterFilterAfterGrowingFilter(t *testing.T) {
	text, posmap := tokensFor("aaa", "bbb")
	out := applyFilters(text, posmap, []ContentFilter{
		{Pattern: regexp.MustCompile("aaa"), Replace: replaceWith("aaaaa")},
		{Pattern: regexp.MustCompile("bbb"), Replace: replaceWith("X")},
	})

	assert.Equal(t, "aaaaaX", out)
	assert.Equal(t, "aaaaa", posmap[0].tok.Value)
	assert.Equal(t, "X", posmap[1].tok.Value)
}

func TestApplyFilters_MatchSpanningThreeTokens(t *testing.T) {
	text, posmap := tokensFor("ab", "cd", "ef")
	out := applyFilters(text, posmap, []ContentFilter{{
		Pattern: regexp.MustCompile("bcde"),
		Replace: replaceWith("1234"),
	}})

	assert.Equal(t, "a1234f", out)
	assert.Equal(t, "a1", posmap[0].tok.Value)
	assert.Equal(t, "23", posmap[1].tok.Value)
	assert.Equal(t, "4f", posmap[2].tok.Value)
}

func TestApplyFilters_ReplacementFunctionSeesGroups(t *testing.T) {
	text, posmap := tokensFor("call 555-0100 now")
	out := applyFilters(text, posmap, []ContentFilter{{
		Pattern: regexp.MustCompile(`(\d{3})-(\d{4})`),
		Replace: func(m Match) string {
			require.Len(t, m.Groups, 3)
			return m.Groups[1] + "-XXXX"
		},
	}})
	assert.Equal(t, "call 555-XXXX now", out)
}

func TestApplyFilters_Idempotence(t *testing.T) {
	filters := []ContentFilter{{
		Pattern: regexp.MustCompile(`\d{3}-\d{2}-\d{4}`),
		Replace: replaceWith("XXX-XX-XXXX"),
	}}

	text, posmap := tokensFor("SSN 123-45-6789 end")
	once := applyFilters(text, posmap, filters)
	twice := applyFilters(once, posmap, filters)

	assert.Equal(t, once, twice)
	assert.Equal(t, "SSN XXX-XX-XXXX end", twice)
}

func TestApplyFilters_NoTextNoChange(t *testing.T) {
	out := applyFilters("", nil, []ContentFilter{{
		Pattern: regexp.MustCompile("x"),
		Replace: replaceWith("y"),
	}})
	assert.Equal(t, "", out)
}

func TestApplyFilters_ChangedFlag(t *testing.T) {
	text, posmap := tokensFor("keep", "drop")
	applyFilters(text, posmap, []ContentFilter{{
		Pattern: regexp.MustCompile("drop"),
		Replace: replaceWith("****"),
	}})

	assert.False(t, posmap[0].tok.Changed())
	assert.True(t, posmap[1].tok.Changed())
}
