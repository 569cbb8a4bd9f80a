// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/sassoftware/pdf-redact/logger"
)

// Match describes one regular-expression match handed to a replacement
// function. Groups[0] is the whole match.
type Match struct {
	Text   string
	Start  int
	End    int
	Groups []string
}

// A ContentFilter pairs a pattern with a replacement generator. Filters
// run in list order over the whole flattened document text; each filter
// sees the edits made by the filters before it.
//
// Spaces in page text are often positional rather than encoded, so
// patterns should treat interior spaces as optional.
type ContentFilter struct {
	Pattern *regexp.Regexp
	Replace func(Match) string
}

// applyFilters runs the filter list over the flattened text, splicing
// every replacement back into the position-mapped tokens. It returns the
// post-edit flattened text.
//
// A match span may have been produced by several consecutive tokens. The
// engine walks the position map with a forward-only cursor: the index of
// the token being consumed, the cumulative original-text offset of that
// token's start, and the net length change already applied to the token.
// Each token touched by a match takes min(remaining match, remaining
// token) original characters and receives the same-sized slice of the
// pending replacement; the last touched token absorbs whatever
// replacement remains.
func applyFilters(text string, posmap []posEntry, filters []ContentFilter) string {
	if len(posmap) == 0 {
		return text
	}

	for _, f := range filters {
		// Matches are enumerated left-to-right and non-overlapping
		// against the text as it stood when this filter started; the
		// running xdiff corrections map their coordinates into the
		// evolving text. Earlier filters may have changed token lengths,
		// so the cursor lengths are rebuilt to describe the tokens as
		// they stand at the start of this pass.
		for i := range posmap {
			posmap[i].length = len(posmap[i].tok.Value)
		}
		snapshot := text
		tmIndex := 0
		tmCharpos := 0
		tmTokenXdiff := 0
		textXdiff := 0

		for _, loc := range f.Pattern.FindAllStringSubmatchIndex(snapshot, -1) {
			i1, i2 := loc[0], loc[1]
			replacement := f.Replace(newMatch(snapshot, loc))
			logger.Debug(fmt.Sprintf("applyFilters: match [%d:%d] -> %d replacement bytes", i1, i2, len(replacement)), true)

			for i1 < i2 {
				// Advance over tokens entirely before this span.
				for tmCharpos+posmap[tmIndex].length <= i1 {
					tmCharpos += posmap[tmIndex].length
					tmIndex++
					tmTokenXdiff = 0
				}
				if tmCharpos > i1 {
					panic(fmt.Sprintf("position map cursor %d overran match start %d", tmCharpos, i1))
				}
				tok := posmap[tmIndex].tok

				// Offset of the match within the token's current value:
				// the snapshot offset corrected by the net length change
				// earlier matches already applied to this token.
				mpos := i1 - tmCharpos + tmTokenXdiff
				if mpos < 0 {
					panic("negative in-token match offset")
				}

				// How much of the match falls inside this token.
				mlen := i2 - i1
				if rest := len(tok.Value) - mpos; rest < mlen {
					mlen = rest
				}
				if mlen < 0 {
					panic("negative in-token match length")
				}

				var r string
				if mlen < i2-i1 {
					// More tokens follow; keep a same-sized slice here.
					cut := runeCut(replacement, mlen)
					r = replacement[:cut]
					replacement = replacement[cut:]
				} else {
					// Last token touched by this match takes the rest.
					r = replacement
					replacement = ""
				}

				tok.Value = tok.Value[:mpos] + r + tok.Value[mpos+mlen:]
				tmTokenXdiff += len(r) - mlen

				// Keep the flattened text in step so later filters see
				// post-edit content. The span removed here is exactly the
				// mlen characters spliced out of the token, keeping the
				// flattened text equal to the concatenated token values.
				text = text[:i1+textXdiff] + r + text[i1+mlen+textXdiff:]
				textXdiff += len(r) - mlen

				i1 += mlen
			}
		}
	}
	return text
}

func newMatch(text string, loc []int) Match {
	m := Match{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]}
	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			m.Groups = append(m.Groups, "")
			continue
		}
		m.Groups = append(m.Groups, text[loc[i]:loc[i+1]])
	}
	return m
}

// runeCut clamps n to len(s) and nudges it forward past any partial
// UTF-8 sequence so slicing never splits a rune across tokens.
func runeCut(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for n < len(s) && !utf8.RuneStart(s[n]) {
		n++
	}
	return n
}
