package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/query"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", domain.ErrValidation)
		}
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return nil
}

// premiseParams reads the listing filters, ordering and page from the query string.
func premiseParams(values url.Values) (query.Params, error) {
	p := query.Params{
		SourceID: values.Get("source"),
		Niche:    values.Get("niche"),
		SubNiche: values.Get("subNiche"),
		SortBy:   values.Get("sortBy"),
		Order:    values.Get("order"),
	}

	var err error
	if v := values.Get("platform"); v != "" {
		if p.Platform, err = domain.ParsePlatform(v); err != nil {
			return p, err
		}
	}
	if p.Used, err = optBool(values, "used"); err != nil {
		return p, err
	}
	if p.From, err = optTime(values, "from", false); err != nil {
		return p, err
	}
	if p.To, err = optTime(values, "to", true); err != nil {
		return p, err
	}
	if p.MinLikes, err = optCount(values, "minLikes"); err != nil {
		return p, err
	}
	if p.MinComments, err = optCount(values, "minComments"); err != nil {
		return p, err
	}
	if p.MinViews, err = optCount(values, "minViews"); err != nil {
		return p, err
	}
	if p.Page, err = optInt(values, "page"); err != nil {
		return p, err
	}
	if p.Page > query.MaxPage {
		return p, invalidParam("page", values.Get("page"))
	}
	if p.PageSize, err = optInt(values, "pageSize"); err != nil {
		return p, err
	}
	return p, nil
}

func fetchOptions(values url.Values) (domain.FetchOptions, error) {
	limit, err := optInt(values, "limit")
	if err != nil {
		return domain.FetchOptions{}, err
	}
	return domain.FetchOptions{SortOrder: values.Get("sortOrder"), Limit: limit}, nil
}

func invalidParam(name, value string) error {
	return fmt.Errorf("%w: invalid %s %q", domain.ErrValidation, name, value)
}

func optBool(values url.Values, name string) (*bool, error) {
	v := values.Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, invalidParam(name, v)
	}
	return &b, nil
}

func optInt(values url.Values, name string) (int, error) {
	v := values.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, invalidParam(name, v)
	}
	return n, nil
}

func optCount(values url.Values, name string) (*int64, error) {
	v := values.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil, invalidParam(name, v)
	}
	return &n, nil
}

// optTime accepts RFC 3339 timestamps or plain dates. A plain date used as an
// upper bound covers the whole day.
func optTime(values url.Values, name string, endOfDay bool) (*time.Time, error) {
	v := strings.TrimSpace(values.Get(name))
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, invalidParam(name, v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return &t, nil
}
