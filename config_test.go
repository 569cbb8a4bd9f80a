// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				MaxConcurrentDocuments: 2,
				MaxConcurrentPages:     4,
				ReplacementGlyphs:      []string{"?", "#"},
			},
			shouldErr: false,
		},
		{
			name: "invalid MaxConcurrentDocuments (too low)",
			cfg: &Config{
				MaxConcurrentDocuments: 0,
				MaxConcurrentPages:     4,
				ReplacementGlyphs:      []string{"?"},
			},
			shouldErr: true,
		},
		{
			name: "invalid MaxConcurrentPages (too low)",
			cfg: &Config{
				MaxConcurrentDocuments: 2,
				MaxConcurrentPages:     0,
				ReplacementGlyphs:      []string{"?"},
			},
			shouldErr: true,
		},
		{
			name: "invalid MaxConcurrentPages (too high)",
			cfg: &Config{
				MaxConcurrentDocuments: 2,
				MaxConcurrentPages:     100,
				ReplacementGlyphs:      []string{"?"},
			},
			shouldErr: true,
		},
		{
			name: "missing ReplacementGlyphs",
			cfg: &Config{
				MaxConcurrentDocuments: 2,
				MaxConcurrentPages:     4,
			},
			shouldErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"?", "#", "*", " "}, cfg.ReplacementGlyphs)
}
