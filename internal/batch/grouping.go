package batch

import (
	"sort"

	"github.com/law-makers/linkclean/pkg/models"
)

// DomainCount is the number of items sharing a registrable domain
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// GroupByDomain groups item indexes by their registrable domain. Items that
// failed to clean land under "invalid".
func GroupByDomain(items []models.BatchItem) map[string][]int {
	groups := make(map[string][]int)
	for i, item := range items {
		domain := item.Domain
		if domain == "" {
			domain = "invalid"
		}
		groups[domain] = append(groups[domain], i)
	}
	return groups
}

// TopDomains returns domain counts sorted by count, then name
func TopDomains(items []models.BatchItem) []DomainCount {
	groups := GroupByDomain(items)
	counts := make([]DomainCount, 0, len(groups))
	for domain, idx := range groups {
		counts = append(counts, DomainCount{Domain: domain, Count: len(idx)})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Domain < counts[j].Domain
	})
	return counts
}
