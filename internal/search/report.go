package search

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spigell/presta-matcher/internal/directory"
	"github.com/spigell/presta-matcher/internal/enhancer"
	"github.com/spigell/presta-matcher/internal/utils"
)

// DumpToTmpFile writes the response as indented JSON into a new temp file
// and returns its name.
func (r *Response) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}

	if err := utils.WriteIndentedJSON(file, r); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// Report flattens each result into printable fields, keyed by provider.
func (r *Response) Report() map[string]map[string]string {
	report := make(map[string]map[string]string, len(r.Results))
	for _, res := range r.Results {
		key := fmt.Sprintf("%s (%d)", res.Provider.DisplayName(), res.Provider.ID)
		entry := map[string]string{
			"skills":       res.Provider.Skills,
			"score":        strconv.Itoa(res.FinalScore),
			"algorithm":    strconv.Itoa(res.AlgorithmScore),
			"match reason": res.MatchReason,
			"hourly rate":  "-",
		}
		if rate, ok := res.Provider.Rate(); ok {
			entry["hourly rate"] = fmt.Sprintf("%.0f €/h", rate)
		}
		if res.AI != nil {
			entry["ai status"] = string(res.AI.Status)
			entry["ai explanation"] = res.AI.Explanation
		}
		report[key] = entry
	}
	return report
}

func (r *Response) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Results)
}

func (r *Response) FindByID(id int64) *enhancer.EnhancedResult {
	for i := range r.Results {
		if r.Results[i].Provider.ID == id {
			return &r.Results[i]
		}
	}
	return nil
}

// Exclude drops results whose provider id is listed.
func (r *Response) Exclude(ids []int64) {
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := r.Results[:0]
	for _, res := range r.Results {
		if _, ok := drop[res.Provider.ID]; ok {
			continue
		}
		kept = append(kept, res)
	}
	r.Results = kept
}

// ToExcluded converts every shown provider into an exclude file entry.
func (r *Response) ToExcluded(reason string) *directory.ExcludedProviders {
	providers := make([]directory.Provider, 0, len(r.Results))
	for _, res := range r.Results {
		providers = append(providers, res.Provider)
	}
	return directory.NewExcluded(directory.ExcludeActorUser, reason, providers...)
}
