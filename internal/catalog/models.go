package catalog

// Entry is one book record returned by the catalog search. Optional numeric
// fields are pointers so that "unrated" stays distinguishable from a zero
// rating.
type Entry struct {
	ID            string
	Title         string
	Authors       []string
	AverageRating *float64
	RatingsCount  *int
	PublishedDate string
	Description   string
}

// Rating returns the average rating, treating a missing one as 0.
func (e Entry) Rating() float64 {
	if e.AverageRating == nil {
		return 0
	}
	return *e.AverageRating
}

// Count returns the ratings count, treating a missing one as 0.
func (e Entry) Count() int {
	if e.RatingsCount == nil {
		return 0
	}
	return *e.RatingsCount
}

// volumesResponse mirrors the subset of the Google Books volumes list
// response that the service reads.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	AverageRating *float64 `json:"averageRating"`
	RatingsCount  *int     `json:"ratingsCount"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
}

func (v volume) toEntry() Entry {
	return Entry{
		ID:            v.ID,
		Title:         v.VolumeInfo.Title,
		Authors:       v.VolumeInfo.Authors,
		AverageRating: v.VolumeInfo.AverageRating,
		RatingsCount:  v.VolumeInfo.RatingsCount,
		PublishedDate: v.VolumeInfo.PublishedDate,
		Description:   v.VolumeInfo.Description,
	}
}
