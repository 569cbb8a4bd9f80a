// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"github.com/go-playground/validator/v10"
	"github.com/sassoftware/pdf-redact/logger"
)

type Config struct {
	// MaxConcurrentDocuments caps how many Redact calls run at once.
	MaxConcurrentDocuments int `validate:"min=1,max=16"`

	// MaxConcurrentPages caps how many pages have their text layers built
	// in parallel. The filter pass itself is always sequential.
	MaxConcurrentPages int `validate:"min=1,max=64"`

	// ReplacementGlyphs are tried in order when replacement text contains a
	// character the active font never rendered in the original document.
	ReplacementGlyphs []string `validate:"required,min=1"`

	DebugOn bool
	Logger  logger.LogFunc
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentDocuments: 2,
		MaxConcurrentPages:     4,
		ReplacementGlyphs:      []string{"?", "#", "*", " "},
		DebugOn:                false,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}
