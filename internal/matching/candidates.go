package matching

import "github.com/spigell/presta-matcher/internal/directory"

// Candidates is a ranked candidate list that post-scoring steps narrow down
// in place.
type Candidates struct {
	Items []MatchResult
}

func NewCandidates(items []MatchResult) *Candidates {
	return &Candidates{Items: items}
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Exclude drops candidates whose provider id is listed, keeping the ranking
// order, and returns the removed ids.
func (c *Candidates) Exclude(ids []int64) []int64 {
	if c == nil || len(ids) == 0 {
		return nil
	}

	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	return c.ExcludeFunc(func(r MatchResult) bool {
		_, ok := drop[r.Provider.ID]
		return ok
	})
}

// ExcludeFunc drops candidates for which remove returns true.
func (c *Candidates) ExcludeFunc(remove func(MatchResult) bool) []int64 {
	if c == nil {
		return nil
	}

	var removed []int64
	kept := c.Items[:0]
	for _, item := range c.Items {
		if remove(item) {
			removed = append(removed, item.Provider.ID)
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept

	return removed
}

// Providers returns the providers in ranking order.
func (c *Candidates) Providers() []directory.Provider {
	if c == nil {
		return nil
	}
	out := make([]directory.Provider, 0, len(c.Items))
	for _, item := range c.Items {
		out = append(out, item.Provider)
	}
	return out
}
