package jobsync

import "strings"

// ScrapeNetworks are the networks the backend can scrape.
var ScrapeNetworks = []string{"LinkedIn", "Instagram", "Facebook", "Twitter", "Reddit"}

// LLMNetworks are the networks sentiment analysis supports.
var LLMNetworks = []string{"LinkedIn", "Instagram", "Twitter", "Facebook"}

// CanonicalNetwork maps a case-insensitive network name to its canonical
// spelling in ScrapeNetworks.
func CanonicalNetwork(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, n := range ScrapeNetworks {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// FilterLLMNetworks keeps the networks analysis supports, canonicalized and
// in input order without repeats.
func FilterLLMNetworks(networks []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, name := range networks {
		canonical, ok := CanonicalNetwork(name)
		if !ok || seen[canonical] || !isLLMNetwork(canonical) {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

func isLLMNetwork(name string) bool {
	for _, n := range LLMNetworks {
		if n == name {
			return true
		}
	}
	return false
}
