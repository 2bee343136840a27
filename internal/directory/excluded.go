package directory

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/spigell/presta-matcher/internal/utils"
)

const (
	ExcludeActorUser   = "user"
	ExcludeActorFilter = "filter"
)

type ExcludedProviders struct {
	Items []*ExcludedProvider
}

type ExcludedProvider struct {
	ID         int64
	Name       string
	Email      string
	Actor      string `json:",omitempty"`
	Reason     string `json:",omitempty"`
	ExcludedAt time.Time
}

// NewExcluded builds exclude entries for the given providers.
func NewExcluded(actor, reason string, providers ...Provider) *ExcludedProviders {
	excluded := &ExcludedProviders{}
	now := time.Now().UTC()
	for _, p := range providers {
		excluded.Items = append(excluded.Items, &ExcludedProvider{
			ID:         p.ID,
			Name:       p.DisplayName(),
			Email:      p.Email,
			Actor:      actor,
			Reason:     reason,
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedProvidersFromFile loads an exclude file. A missing or empty file
// yields an empty list.
func GetExcludedProvidersFromFile(path string) (*ExcludedProviders, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedProviders{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedProviders{}, nil
	}

	var excluded ExcludedProviders
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose ids are not already present.
func (e *ExcludedProviders) Append(s *ExcludedProviders) {
	if s == nil {
		return
	}

	known := make(map[int64]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.ID] = struct{}{}
	}

	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedProviders) IDs() []int64 {
	ids := make([]int64, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedProviders) Len() int {
	return len(e.Items)
}

func (e *ExcludedProviders) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	return utils.WriteIndentedJSON(file, e)
}
