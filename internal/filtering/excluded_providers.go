package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/presta-matcher/internal/matching"
)

type excludedProvidersFilter struct {
	ids []int64
}

// NewExcludedProviders creates a filter that removes providers listed in the config.
func NewExcludedProviders() Filter {
	return &excludedProvidersFilter{}
}

func (f *excludedProvidersFilter) Name() string { return "excluded_providers" }

func (f *excludedProvidersFilter) Disable(string) {}

func (f *excludedProvidersFilter) IsEnabled() bool { return true }

func (f *excludedProvidersFilter) Validate(cfg *Config) error {
	f.ids = nil
	if cfg != nil {
		f.ids = append(f.ids, cfg.ExcludedProviders...)
	}
	return nil
}

func (f *excludedProvidersFilter) Apply(_ context.Context, deps Deps, c *matching.Candidates) (*matching.Candidates, Step, error) {
	initial := c.Len()
	if len(f.ids) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(f.ids)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding providers from config",
			zap.Strings("excluded_providers", formatIDs(excluded)),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *excludedProvidersFilter) Status() Status {
	details := map[string]string{}
	if len(f.ids) > 0 {
		details["providers"] = strings.Join(formatIDs(f.ids), ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
