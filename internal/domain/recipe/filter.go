package recipe

import "strings"

// FilterRecipes narrows recipes to those matching the cuisine and tag
// selection. A recipe is kept when it belongs to at least one selected
// cuisine and carries every selected tag. With nothing selected the input
// slice itself is returned. Relative order is preserved and the input is
// never modified.
func FilterRecipes(recipes []Recipe, req FilterRequest) []Recipe {
	if req.IsEmpty() {
		return recipes
	}

	cuisines := make(map[int]struct{}, len(req.Cuisines))
	for _, id := range req.Cuisines {
		cuisines[id] = struct{}{}
	}

	filtered := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if len(cuisines) > 0 && !r.HasCuisine(cuisines) {
			continue
		}
		if !hasAllTags(r, req.Tags) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func hasAllTags(r Recipe, tags []string) bool {
	for _, tag := range tags {
		if !r.HasTag(tag) {
			return false
		}
	}
	return true
}

// ApplyFilters runs FilterRecipes and then keeps only the recipes whose
// English or Greek name contains searchTerm, ignoring case. A blank term
// leaves the filtered result as is.
func ApplyFilters(recipes []Recipe, req FilterRequest, searchTerm string) []Recipe {
	filtered := FilterRecipes(recipes, req)

	if strings.TrimSpace(searchTerm) == "" {
		return filtered
	}

	term := strings.ToLower(searchTerm)
	matched := make([]Recipe, 0, len(filtered))
	for _, r := range filtered {
		if r.NameContains(term) {
			matched = append(matched, r)
		}
	}
	return matched
}

// ExtractCuisines returns the distinct cuisines referenced by recipes, keyed
// by id. Later occurrences overwrite the names of earlier ones while the
// position of the first occurrence is kept.
func ExtractCuisines(recipes []Recipe) []CuisineOption {
	options := make([]CuisineOption, 0)
	index := make(map[int]int)

	for _, r := range recipes {
		for _, c := range r.Cuisines {
			opt := CuisineOption{ID: c.ID, NameEn: c.NameEn, NameGr: c.NameGr}
			if i, ok := index[c.ID]; ok {
				options[i] = opt
				continue
			}
			index[c.ID] = len(options)
			options = append(options, opt)
		}
	}
	return options
}

// ExtractTags returns the distinct tags referenced by recipes, keyed by the
// lower-cased English text. Values of the last occurrence win; order follows
// the first occurrence of each key.
func ExtractTags(recipes []Recipe) []TagOption {
	options := make([]TagOption, 0)
	index := make(map[string]int)

	for _, r := range recipes {
		for _, t := range r.Tags {
			opt := TagOption{TagEn: t.En, TagGr: t.Gr}
			key := t.Key()
			if i, ok := index[key]; ok {
				options[i] = opt
				continue
			}
			index[key] = len(options)
			options = append(options, opt)
		}
	}
	return options
}
