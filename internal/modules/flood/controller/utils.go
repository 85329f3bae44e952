package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// parseIDPath reads a positive integer path parameter.
func parseIDPath(r *http.Request, name string) (int64, error) {
	s := r.PathValue(name)
	if s == "" {
		return 0, fmt.Errorf("missing '%s'", name)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' (expected integer)", name)
	}
	return id, nil
}

func parseLimitQuery(r *http.Request) (int, error) {
	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return 0, errors.New("'limit' must be > 0")
		}
		if n > maxLimit {
			return 0, errors.New("'limit' must be <= 1000")
		}
		limit = n
	}
	return limit, nil
}

// parseAlertsQuery returns the limit and the optional area filter.
func parseAlertsQuery(r *http.Request) (limit int, areaID *int64, err error) {
	limit, err = parseLimitQuery(r)
	if err != nil {
		return 0, nil, err
	}
	if s := r.URL.Query().Get("area_id"); s != "" {
		id, convErr := strconv.ParseInt(s, 10, 64)
		if convErr != nil {
			return 0, nil, errors.New("invalid 'area_id' (expected integer)")
		}
		areaID = &id
	}
	return limit, areaID, nil
}
