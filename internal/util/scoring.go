package util

import (
	"github.com/sahilm/fuzzy"

	"github.com/mithrel/marketmind/pkg/api"
)

// ScoreCompletions returns the top N matches for the input string from the candidates list.
func ScoreCompletions(input string, candidates []string, n int) []string {
	if input == "" {
		return candidates
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}

	limit := n
	if n <= 0 || len(matches) < limit {
		limit = len(matches)
	}

	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Str
	}
	return out
}

// ResolveModule looks up a module by id and falls back to the single best
// fuzzy match ("mkt" -> marketing). The error names the candidates.
func ResolveModule(input string) (api.Module, error) {
	m, err := api.LookupModule(input)
	if err == nil {
		return m, nil
	}
	if best := ScoreCompletions(input, api.ModuleNames(), 1); len(best) == 1 {
		return api.LookupModule(best[0])
	}
	return api.Module{}, err
}
