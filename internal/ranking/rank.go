// Package ranking orders catalog entries by quality and cuts the shortlist
// that is offered to the language model.
package ranking

import (
	"cmp"
	"slices"

	"github.com/edgard/bookrec/internal/catalog"
)

// ShortlistSize is the maximum number of candidates handed to the model.
const ShortlistSize = 10

// Shortlist is an ordered candidate set, best first.
type Shortlist []catalog.Entry

// Rank sorts entries by average rating, then ratings count, both descending,
// with missing values counted as 0, and keeps the first ShortlistSize.
// Equal keys keep their input order. The input slice is not modified.
func Rank(entries []catalog.Entry) Shortlist {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b catalog.Entry) int {
		if c := cmp.Compare(b.Rating(), a.Rating()); c != 0 {
			return c
		}
		return cmp.Compare(b.Count(), a.Count())
	})

	if len(sorted) > ShortlistSize {
		sorted = sorted[:ShortlistSize]
	}
	return Shortlist(sorted)
}
