package recipe

// FilterRequest is the user's current cuisine and tag selection.
type FilterRequest struct {
	Cuisines []int    `json:"cuisines"`
	Tags     []string `json:"tags"`
}

// IsEmpty reports whether nothing is selected.
func (f FilterRequest) IsEmpty() bool {
	return len(f.Cuisines) == 0 && len(f.Tags) == 0
}

// CuisineOption is one entry of the cuisine vocabulary.
type CuisineOption struct {
	ID     int    `json:"id"`
	NameEn string `json:"nameEn"`
	NameGr string `json:"nameGr"`
}

// TagOption is one entry of the tag vocabulary.
type TagOption struct {
	TagEn string `json:"tagEn"`
	TagGr string `json:"tagGr"`
}
