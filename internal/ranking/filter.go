package ranking

import "github.com/maxaizer/realjobs/internal/entities"

// Filter narrows the board before ranking. The store applies it and only
// ever returns active postings; empty fields do not constrain. Search and
// Location are case-insensitive literal substring matches.
type Filter struct {
	Search   string
	Category string
	Location string
	JobType  entities.JobType
	MinScore *int
}
