package domain

import (
	"slices"
	"strings"
)

const (
	// DefaultPageSize is the number of feed rows per page.
	DefaultPageSize = 10

	uncategorized = "Uncategorized"
)

// CategoryCount is how many records of a feed fall into one category.
type CategoryCount struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	TotalCount int    `json:"totalCount"`
}

// CountCategories groups records by category, most frequent first. Ties are
// broken by name. Records without a category are grouped as "Uncategorized".
func CountCategories(records []*TransactionRecord) []CategoryCount {
	counts := map[string]int{}
	for _, r := range records {
		name := strings.TrimSpace(r.Category)
		if name == "" {
			name = uncategorized
		}
		counts[name]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n, TotalCount: len(records)})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// FeedPage is one page of a merged feed.
type FeedPage struct {
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"totalPages"`
	Transactions []*TransactionRecord `json:"transactions"`
}

// Paginate slices records into pages of size perPage (DefaultPageSize if
// perPage < 1) and returns the requested page. Pages are 1-based; a page
// below 1 is treated as 1 and a page past the end is empty.
func Paginate(records []*TransactionRecord, page, perPage int) *FeedPage {
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(records) / perPage
	if len(records)%perPage != 0 {
		total++
	}

	rows := []*TransactionRecord{}
	// compared before multiplying so huge pages cannot overflow
	if page <= total {
		start := (page - 1) * perPage
		end := min(start+perPage, len(records))
		rows = records[start:end]
	}

	return &FeedPage{
		Page:         page,
		TotalPages:   total,
		Transactions: rows,
	}
}
