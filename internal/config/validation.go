package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/tingleradar/tingle-radar/internal/tagging"
)

// Validate checks settings that would otherwise fail late at runtime.
func Validate(cfg *Config) error {
	if cfg.Browse != nil {
		if cfg.Browse.MaxPageSize < 1 {
			return fmt.Errorf("browse.maxPageSize must be positive, got %d", cfg.Browse.MaxPageSize)
		}
		if cfg.Browse.DefaultPageSize < 1 || cfg.Browse.DefaultPageSize > cfg.Browse.MaxPageSize {
			return fmt.Errorf("browse.defaultPageSize must be between 1 and %d, got %d",
				cfg.Browse.MaxPageSize, cfg.Browse.DefaultPageSize)
		}
	}

	if cfg.Server != nil {
		if cfg.Server.VoteRatePerMinute < 0 {
			return fmt.Errorf("server.voteRatePerMinute must not be negative")
		}
		if cfg.Server.VoteBurst < 0 {
			return fmt.Errorf("server.voteBurst must not be negative")
		}
	}

	if cfg.Backfill != nil && cfg.Backfill.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Backfill.Schedule); err != nil {
			return fmt.Errorf("backfill.schedule %q: %w", cfg.Backfill.Schedule, err)
		}
	}

	for i, r := range cfg.ExtraRules {
		if err := ValidateRule(r); err != nil {
			return fmt.Errorf("extraRules[%d]: %w", i, err)
		}
	}

	return nil
}

// ValidateRule checks a user-supplied classifier rule.
func ValidateRule(r RuleConfig) error {
	if !tagging.IsVotable(r.Tag) {
		return fmt.Errorf("unknown tag %q", r.Tag)
	}

	switch tagging.Field(r.Field) {
	case "", tagging.FieldTitle, tagging.FieldDescription, tagging.FieldLabels, tagging.FieldAll, "labels":
	default:
		return fmt.Errorf("tag %s: unknown field %q", r.Tag, r.Field)
	}

	if len(r.Keywords) == 0 {
		return fmt.Errorf("tag %s: no keywords", r.Tag)
	}
	for _, k := range r.Keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("tag %s: empty keyword", r.Tag)
		}
	}
	return nil
}
