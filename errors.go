// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import "fmt"

// ParseError reports malformed content-stream or CMap syntax: unbalanced
// bracket nesting, an odd dictionary element count, or an unsupported
// code-space width. It is fatal to the current document.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return "parse error: " + e.Msg }

func parseErrorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// EncodingError reports that changed text could not be encoded back into
// font-native bytes, typically because the font declares a named encoding
// this package does not implement. It is fatal to the current document.
type EncodingError struct {
	Msg string
}

func (e *EncodingError) Error() string { return "encoding error: " + e.Msg }

func encodingErrorf(format string, args ...interface{}) *EncodingError {
	return &EncodingError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedInputError reports input the upstream document layer should
// have normalized, such as a still-compressed content stream.
type UnsupportedInputError struct {
	Msg string
}

func (e *UnsupportedInputError) Error() string { return "unsupported input: " + e.Msg }
