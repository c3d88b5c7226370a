package httpx

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/target/citation-poller/internal/errors"
)

// Page is a validated limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// PageBounds configures ParsePage. Max caps explicit limits; Default applies when limit is absent.
type PageBounds struct {
	Default int
	Max     int
}

var triggerPageBounds = PageBounds{Default: 50, Max: 500}

// ParsePage reads ?limit= and ?offset=. Absent values take their defaults and an oversized
// limit is clamped to bounds.Max. Anything that is not a non-negative integer, or a zero
// limit, is a validation error naming the parameter.
func ParsePage(r *http.Request, bounds PageBounds) (Page, error) {
	bounds.Max = max(bounds.Max, 1)
	bounds.Default = min(max(bounds.Default, 1), bounds.Max)

	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"), "limit", bounds.Default)
	if err != nil {
		return Page{}, err
	}
	if limit == 0 {
		return Page{}, apperrors.ValidationField("limit", "limit must be at least 1")
	}
	offset, err := queryInt(q.Get("offset"), "offset", 0)
	if err != nil {
		return Page{}, err
	}
	return Page{Limit: min(limit, bounds.Max), Offset: offset}, nil
}

func queryInt(raw, name string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.ValidationField(name, name+" must be a non-negative integer")
	}
	return n, nil
}
