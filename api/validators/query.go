package validators

import (
	"net/http"
	"strconv"

	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/pagination"
)

// ParsePagination reads limit/cursor query parameters for cursor-paginated
// listings. A malformed cursor is a validation error rather than an empty page.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer")
		}
		params.Limit = limit
	}

	cursor := r.URL.Query().Get("cursor")
	if cursor != "" {
		if _, err := pagination.ParseCursor(cursor); err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	return params, nil
}
