package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
)

// parseRecipeQuery reads cuisines, tags, search, page and page_size. List
// parameters accept both comma-separated and repeated forms.
func parseRecipeQuery(values url.Values) (inbound.RecipeQuery, *errors.AppError) {
	var query inbound.RecipeQuery

	for _, raw := range splitList(values["cuisines"]) {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return query, errors.NewBadRequestError("cuisines must be integer ids").
				WithMetadata("cuisines", raw)
		}
		query.Filter.Cuisines = append(query.Filter.Cuisines, id)
	}

	query.Filter.Tags = splitList(values["tags"])
	query.Search = values.Get("search")

	var appErr *errors.AppError
	if query.Page, appErr = intParam(values, "page"); appErr != nil {
		return query, appErr
	}
	if query.PageSize, appErr = intParam(values, "page_size"); appErr != nil {
		return query, appErr
	}

	return query, nil
}

func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(values url.Values, name string) (int, *errors.AppError) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewBadRequestError(name + " must be an integer").WithMetadata(name, raw)
	}
	return n, nil
}

func boolParam(values url.Values, name string) (bool, *errors.AppError) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewBadRequestError(name + " must be a boolean").WithMetadata(name, raw)
	}
	return b, nil
}
