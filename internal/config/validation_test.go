/*
Package config provides unit tests for validation functions.
*/
package config

import (
	"strings"
	"testing"
)

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    RuleConfig
		wantErr string
	}{
		{"valid default field", RuleConfig{Tag: "whisper", Keywords: []string{"psst"}}, ""},
		{"valid labels alias", RuleConfig{Tag: "binaural", Field: "labels", Keywords: []string{"8d"}}, ""},
		{"valid language tag", RuleConfig{Tag: "ja", Field: "title", Keywords: []string{"日本"}}, ""},
		{"unknown tag", RuleConfig{Tag: "loud", Keywords: []string{"x"}}, "unknown tag"},
		{"unknown field", RuleConfig{Tag: "whisper", Field: "comments", Keywords: []string{"x"}}, "unknown field"},
		{"no keywords", RuleConfig{Tag: "whisper"}, "no keywords"},
		{"blank keyword", RuleConfig{Tag: "whisper", Keywords: []string{" "}}, "empty keyword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"cron descriptor", func(c *Config) { c.Backfill.Schedule = "@hourly" }, false},
		{"five field cron", func(c *Config) { c.Backfill.Schedule = "*/15 * * * *" }, false},
		{"disabled schedule", func(c *Config) { c.Backfill.Schedule = "" }, false},
		{"garbage schedule", func(c *Config) { c.Backfill.Schedule = "soon" }, true},
		{"zero max page", func(c *Config) { c.Browse.MaxPageSize = 0 }, true},
		{"negative rate", func(c *Config) { c.Server.VoteRatePerMinute = -1 }, true},
		{"negative burst", func(c *Config) { c.Server.VoteBurst = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
