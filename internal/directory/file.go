package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const rosterKey = "providers"

// File reads the roster from a yaml/json/toml file on every call, so edits
// to the file are picked up by the next search.
type File struct {
	Path string
}

// NewFile returns a file backed directory.
func NewFile(path string) *File {
	return &File{Path: strings.TrimSpace(path)}
}

func (f *File) ListProviders(ctx context.Context) ([]Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.Path == "" {
		return nil, fmt.Errorf("roster file is not configured")
	}

	v := viper.New()
	v.SetConfigFile(f.Path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading roster file %q: %w", f.Path, err)
	}

	var providers []Provider
	if err := v.UnmarshalKey(rosterKey, &providers); err != nil {
		return nil, fmt.Errorf("decoding roster file %q: %w", f.Path, err)
	}

	roster := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if IsProvider(p.Role) {
			roster = append(roster, p)
		}
	}

	return roster, nil
}
