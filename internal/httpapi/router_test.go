package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/metrics"
	"premise_fetcher/internal/query"
	"premise_fetcher/internal/service"
	"premise_fetcher/internal/storage/memory"
)

type fakeAdapter struct {
	platform domain.Platform
	segment  string
	items    []domain.RawItem
	err      error
	fetches  atomic.Int32
}

func (a *fakeAdapter) Platform() domain.Platform { return a.platform }

// FetchItem serves the fake item whose link equals rawURL.
func (a *fakeAdapter) FetchItem(_ context.Context, rawURL string) (*domain.Batch, error) {
	a.fetches.Add(1)
	if a.err != nil {
		return nil, a.err
	}
	for _, it := range a.items {
		if it.Link == rawURL {
			return &domain.Batch{
				Source: domain.SourceInfo{Name: "nosleep", URL: "https://example.com/r/nosleep"},
				Items:  []domain.RawItem{it},
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, rawURL)
}

func (a *fakeAdapter) ParseLocator(rawURL string) (domain.Locator, error) {
	_, id, ok := strings.Cut(rawURL, a.segment)
	if !ok || id == "" {
		return domain.Locator{}, fmt.Errorf("%w: bad %s url", domain.ErrValidation, a.platform)
	}
	return domain.Locator{
		Platform:     a.platform,
		ID:           id,
		CanonicalURL: "https://example.com" + a.segment + id,
	}, nil
}

func (a *fakeAdapter) Fetch(_ context.Context, loc domain.Locator, _ domain.FetchOptions) (*domain.Batch, error) {
	a.fetches.Add(1)
	if a.err != nil {
		return nil, a.err
	}
	return &domain.Batch{
		Source: domain.SourceInfo{ExternalID: loc.ID, Name: loc.ID, URL: loc.CanonicalURL},
		Items:  a.items,
	}, nil
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type RouterSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	reddit   *fakeAdapter
	youtube  *fakeAdapter
	registry *prometheus.Registry
	router   http.Handler
}

func (s *RouterSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.store = memory.New()
	s.registry = prometheus.NewRegistry()
	m := metrics.New(s.registry)

	published := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s.reddit = &fakeAdapter{
		platform: domain.PlatformReddit,
		segment:  "/r/",
		items: []domain.RawItem{
			{ExternalID: "a", Link: "https://example.com/r/nosleep/a", Title: "Ela ouviu passos.", PublishedAt: published, Likes: 10},
			{ExternalID: "b", Link: "https://example.com/r/nosleep/b", Body: "Ele achou um mapa!", PublishedAt: published, Likes: 20},
			{ExternalID: "c", Link: "https://example.com/r/nosleep/c", Title: "Uma carta antiga", PublishedAt: published, Likes: 30},
			{ExternalID: "empty", Link: "https://example.com/r/nosleep/empty"},
		},
	}
	s.youtube = &fakeAdapter{platform: domain.PlatformYouTube, segment: "/channel/"}
	adapters := []service.Adapter{s.reddit, s.youtube}

	sources := s.store.Sources()
	premises := s.store.Premises()

	s.router = NewRouter(Deps{
		Ingest:   service.NewIngestService(sources, premises, adapters, nil, nil, m, logger),
		Sources:  service.NewSourceService(sources, premises, memory.TransactionManager{}, nil, adapters, logger),
		Premises: service.NewPremiseService(premises, nil, logger),
		Niches:   service.NewNicheService(s.store.Niches()),
		Metrics:  m,
		Gatherer: s.registry,
		Health:   func(context.Context) error { return nil },
		Logger:   logger,
	})
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) do(method, path string, body any) (int, response) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func (s *RouterSuite) registerReddit() domain.Source {
	code, resp := s.do(http.MethodPost, "/sources/reddit", map[string]string{"url": "https://www.reddit.com/r/nosleep"})
	s.Require().Equal(http.StatusCreated, code, resp.Error)

	var source domain.Source
	s.Require().NoError(json.Unmarshal(resp.Data, &source))
	return source
}

func (s *RouterSuite) premiseCount() int {
	_, total, err := s.store.Premises().List(s.ctx, query.Build(query.Params{}))
	s.Require().NoError(err)
	return total
}

func (s *RouterSuite) TestHealth() {
	code, resp := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, code)
	s.True(resp.Success)
}

func (s *RouterSuite) TestRegisterSource() {
	source := s.registerReddit()
	s.Equal(domain.PlatformReddit, source.Platform)
	s.Equal("https://example.com/r/nosleep", source.URL)
	s.Equal(source.URL, source.Name)

	code, resp := s.do(http.MethodPost, "/sources/reddit", map[string]string{"url": "https://www.reddit.com/r/nosleep"})
	s.Equal(http.StatusBadRequest, code)
	s.False(resp.Success)
	s.Contains(resp.Message, "already registered")

	code, _ = s.do(http.MethodPost, "/sources/reddit", map[string]string{"url": "https://www.reddit.com/user/x"})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/sources/myspace", map[string]string{"url": "https://myspace.com/x"})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/sources/tiktok", map[string]string{"url": "https://www.tiktok.com/@someone"})
	s.Equal(http.StatusServiceUnavailable, code)

	code, resp = s.do(http.MethodPost, "/sources/reddit", nil)
	s.Equal(http.StatusBadRequest, code)
	s.Contains(resp.Message, "request body")

	code, resp = s.do(http.MethodGet, "/sources", nil)
	s.Equal(http.StatusOK, code)
	var list []domain.Source
	s.Require().NoError(json.Unmarshal(resp.Data, &list))
	s.Len(list, 1)
}

func (s *RouterSuite) TestHealth_StoreDown() {
	router := NewRouter(Deps{
		Health: func(context.Context) error { return errors.New("connection refused") },
		Logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"success":false,"message":"store unavailable","error":"store unavailable"}`, rec.Body.String())
}

func (s *RouterSuite) TestFailuresCarryMessage() {
	source := s.registerReddit()
	s.reddit.err = errors.New("pq: relation premises does not exist")

	cases := []struct {
		method, path string
		body         any
		status       int
		message      string
	}{
		{http.MethodGet, "/sources/missing", nil, http.StatusNotFound, "source missing"},
		{http.MethodGet, "/premises?page=-1", nil, http.StatusBadRequest, "page"},
		{http.MethodGet, "/premises?page=9223372036854775807", nil, http.StatusBadRequest, "page"},
		{http.MethodPost, "/sources/tiktok", map[string]string{"url": "https://www.tiktok.com/@someone"}, http.StatusServiceUnavailable, "tiktok"},
		{http.MethodPost, "/sources/" + source.ID + "/extract", nil, http.StatusInternalServerError, "internal error"},
		{http.MethodGet, "/nowhere", nil, http.StatusNotFound, "route not found"},
		{http.MethodPut, "/premises", nil, http.StatusMethodNotAllowed, "method not allowed"},
	}
	for _, tc := range cases {
		code, resp := s.do(tc.method, tc.path, tc.body)
		s.Equal(tc.status, code, tc.path)
		s.False(resp.Success, tc.path)
		s.Contains(resp.Message, tc.message, tc.path)
		s.Equal(resp.Message, resp.Error, tc.path)
	}
}

func (s *RouterSuite) TestGetSource_NotFound() {
	code, resp := s.do(http.MethodGet, "/sources/missing", nil)
	s.Equal(http.StatusNotFound, code)
	s.False(resp.Success)
	s.NotEmpty(resp.Message)
}

func (s *RouterSuite) TestExtract_Idempotent() {
	source := s.registerReddit()

	code, resp := s.do(http.MethodPost, "/reddit/extract/"+source.ID, nil)
	s.Require().Equal(http.StatusOK, code, resp.Error)
	s.Equal("3 new premises saved", resp.Message)

	var result domain.IngestResult
	s.Require().NoError(json.Unmarshal(resp.Data, &result))
	s.Equal(4, result.Fetched)
	s.Equal(1, result.Failed)
	s.Equal(3, result.InsertedCount)
	s.Require().Len(result.Inserted, 3)
	s.Equal("Eu ela ouviu passos.", result.Inserted[0].FirstPerson)

	var raw map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(resp.Data, &raw))
	s.JSONEq(`3`, string(raw["insertedCount"]))
	s.Contains(raw, "insertedItems")

	code, resp = s.do(http.MethodPost, "/sources/"+source.ID+"/extract?limit=5", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("0 new premises saved", resp.Message)
	s.Require().NoError(json.Unmarshal(resp.Data, &result))
	s.Equal(3, result.Duplicates)
	s.Equal(0, result.InsertedCount)
	s.Empty(result.Inserted)

	s.Equal(3, s.premiseCount())

	got, err := s.store.Sources().Get(s.ctx, source.ID)
	s.Require().NoError(err)
	s.NotNil(got.LastExtractedAt)
}

func (s *RouterSuite) TestExtract_PlatformMismatch() {
	source := s.registerReddit()

	code, resp := s.do(http.MethodPost, "/youtube/extract/"+source.ID, nil)
	s.Equal(http.StatusBadRequest, code)
	s.False(resp.Success)
	s.Contains(resp.Message, "platform mismatch")

	s.Zero(s.reddit.fetches.Load())
	s.Zero(s.youtube.fetches.Load())
	s.Zero(s.premiseCount())

	got, err := s.store.Sources().Get(s.ctx, source.ID)
	s.Require().NoError(err)
	s.Nil(got.LastExtractedAt)
}

func (s *RouterSuite) TestExtract_UpstreamFailure() {
	source := s.registerReddit()
	s.reddit.err = domain.NewUpstreamError(domain.PlatformReddit, "unexpected status 502",
		errors.New("dial tcp 10.0.0.1:443: connection refused"))

	code, resp := s.do(http.MethodPost, "/sources/"+source.ID+"/extract", nil)
	s.Equal(http.StatusInternalServerError, code)
	s.Contains(resp.Message, "unexpected status 502")
	s.NotContains(resp.Message, "10.0.0.1")
	s.Equal(resp.Message, resp.Error)
	s.Zero(s.premiseCount())
}

func (s *RouterSuite) TestExtract_InvalidLimit() {
	source := s.registerReddit()

	code, _ := s.do(http.MethodPost, "/sources/"+source.ID+"/extract?limit=lots", nil)
	s.Equal(http.StatusBadRequest, code)
	s.Zero(s.reddit.fetches.Load())
}

func (s *RouterSuite) TestAnalyzeItem() {
	code, resp := s.do(http.MethodPost, "/reddit/item", map[string]string{"url": "https://example.com/r/nosleep/b"})
	s.Require().Equal(http.StatusOK, code, resp.Message)
	s.Equal("premise found", resp.Message)

	var preview domain.ItemPreview
	s.Require().NoError(json.Unmarshal(resp.Data, &preview))
	s.Equal("nosleep", preview.Source.Name)
	s.Equal("Ele achou um mapa!", preview.Premise.Body)
	s.Equal(int64(20), preview.Premise.Metrics.Likes)
	s.Empty(preview.Premise.ID)
	s.Zero(s.premiseCount())

	code, resp = s.do(http.MethodPost, "/reddit/item", map[string]string{"url": "https://example.com/r/nosleep/zzz"})
	s.Equal(http.StatusNotFound, code)
	s.NotEmpty(resp.Message)

	code, _ = s.do(http.MethodPost, "/reddit/item", map[string]string{})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/myspace/item", map[string]string{"url": "https://myspace.com/x"})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/tiktok/item", map[string]string{"url": "https://www.tiktok.com/@x/video/1"})
	s.Equal(http.StatusServiceUnavailable, code)
}

func (s *RouterSuite) TestAnalyze() {
	code, resp := s.do(http.MethodPost, "/reddit/analyze", map[string]any{"url": "https://www.reddit.com/r/nosleep", "limit": 3})
	s.Require().Equal(http.StatusOK, code, resp.Error)
	s.Equal("3 premises found", resp.Message)

	var analysis domain.Analysis
	s.Require().NoError(json.Unmarshal(resp.Data, &analysis))
	s.Len(analysis.Premises, 3)
	s.Equal(1, analysis.Failed)
	s.Zero(s.premiseCount())

	code, _ = s.do(http.MethodPost, "/reddit/analyze", map[string]any{})
	s.Equal(http.StatusBadRequest, code)
}

func (s *RouterSuite) TestListPremises_Pagination() {
	source := s.registerReddit()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ref := domain.SourceRef{ID: source.ID, Platform: source.Platform, URL: source.URL, Name: source.Name}
	for i := 0; i < 45; i++ {
		_, err := s.store.Premises().Insert(s.ctx, &domain.Premise{
			ID:        fmt.Sprintf("p%02d", i),
			Source:    ref,
			Link:      fmt.Sprintf("https://example.com/p/%d", i),
			Body:      "body",
			Metrics:   domain.Metrics{ObservedAt: base.AddDate(0, 0, i), Likes: int64(i)},
			CreatedAt: base,
			UpdatedAt: base,
		})
		s.Require().NoError(err)
	}

	code, resp := s.do(http.MethodGet, "/premises?page=3&pageSize=20", nil)
	s.Require().Equal(http.StatusOK, code)

	var page service.PremisePage
	s.Require().NoError(json.Unmarshal(resp.Data, &page))
	s.Len(page.Items, 5)
	s.Equal(query.Pagination{Total: 45, Page: 3, PageSize: 20, TotalPages: 3}, page.Pagination)

	code, resp = s.do(http.MethodGet, "/premises?minLikes=40&sortBy=likes&order=asc&from=2026-01-01&to=2026-02-13", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(resp.Data, &page))
	s.Require().Len(page.Items, 4)
	s.Equal("p40", page.Items[0].ID)
	s.Equal("p43", page.Items[3].ID)

	code, resp = s.do(http.MethodGet, "/premises?pageSize=500", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(resp.Data, &page))
	s.Equal(query.MaxPageSize, page.Pagination.PageSize)
}

func (s *RouterSuite) TestListPremises_InvalidParams() {
	for _, q := range []string{"minLikes=-1", "used=maybe", "from=yesterday", "page=x", "page=9223372036854775807", "platform=myspace"} {
		code, resp := s.do(http.MethodGet, "/premises?"+q, nil)
		s.Equal(http.StatusBadRequest, code, q)
		s.False(resp.Success, q)
	}
}

func (s *RouterSuite) TestPremiseCuration() {
	source := s.registerReddit()
	code, _ := s.do(http.MethodPost, "/sources/"+source.ID+"/extract", nil)
	s.Require().Equal(http.StatusOK, code)

	items, _, err := s.store.Premises().List(s.ctx, query.Build(query.Params{SortBy: "likes", Order: "asc"}))
	s.Require().NoError(err)
	id := items[0].ID

	code, resp := s.do(http.MethodPatch, "/premises/"+id+"/used", map[string]bool{"used": true})
	s.Require().Equal(http.StatusOK, code)
	var p domain.Premise
	s.Require().NoError(json.Unmarshal(resp.Data, &p))
	s.True(p.Used)

	code, _ = s.do(http.MethodPatch, "/premises/"+id+"/used", map[string]any{})
	s.Equal(http.StatusBadRequest, code)

	code, resp = s.do(http.MethodPatch, "/premises/"+id+"/category", map[string]string{"niche": " horror "})
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(resp.Data, &p))
	s.Equal("horror", p.Niche)

	code, _ = s.do(http.MethodPatch, "/premises/"+id+"/category", map[string]any{})
	s.Equal(http.StatusBadRequest, code)

	code, resp = s.do(http.MethodGet, "/premises/"+id+"/first-person", nil)
	s.Require().Equal(http.StatusOK, code)
	s.JSONEq(`{"firstPerson":"Eu ela ouviu passos."}`, string(resp.Data))

	code, resp = s.do(http.MethodGet, "/premises?used=true&niche=horror", nil)
	s.Require().Equal(http.StatusOK, code)
	var page service.PremisePage
	s.Require().NoError(json.Unmarshal(resp.Data, &page))
	s.Equal(1, page.Pagination.Total)

	code, _ = s.do(http.MethodDelete, "/premises/"+id, nil)
	s.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/premises/"+id, nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterSuite) TestDeleteSource_Cascades() {
	source := s.registerReddit()
	code, _ := s.do(http.MethodPost, "/sources/"+source.ID+"/extract", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().Equal(3, s.premiseCount())

	code, _ = s.do(http.MethodDelete, "/sources/"+source.ID, nil)
	s.Equal(http.StatusOK, code)
	s.Zero(s.premiseCount())

	code, _ = s.do(http.MethodDelete, "/sources/"+source.ID, nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterSuite) TestNiches() {
	code, resp := s.do(http.MethodPost, "/niches", map[string]any{"name": "Horror", "subNiches": []string{"ghosts", "ghosts", " "}})
	s.Require().Equal(http.StatusCreated, code, resp.Error)
	var n domain.Niche
	s.Require().NoError(json.Unmarshal(resp.Data, &n))
	s.Equal([]string{"ghosts"}, n.SubNiches)

	code, _ = s.do(http.MethodPost, "/niches", map[string]any{"name": "Horror"})
	s.Equal(http.StatusBadRequest, code)

	code, resp = s.do(http.MethodPost, "/niches/"+n.ID+"/subniches", map[string]string{"name": "cabins"})
	s.Require().Equal(http.StatusCreated, code)
	s.Require().NoError(json.Unmarshal(resp.Data, &n))
	s.Equal([]string{"ghosts", "cabins"}, n.SubNiches)

	code, _ = s.do(http.MethodPost, "/niches/"+n.ID+"/subniches", map[string]string{"name": "cabins"})
	s.Equal(http.StatusBadRequest, code)

	code, resp = s.do(http.MethodPut, "/niches/"+n.ID, map[string]any{"name": "Terror"})
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(resp.Data, &n))
	s.Equal("Terror", n.Name)
	s.Equal([]string{"ghosts", "cabins"}, n.SubNiches)

	code, resp = s.do(http.MethodGet, "/niches", nil)
	s.Require().Equal(http.StatusOK, code)
	var list []domain.Niche
	s.Require().NoError(json.Unmarshal(resp.Data, &list))
	s.Len(list, 1)

	code, _ = s.do(http.MethodDelete, "/niches/"+n.ID, nil)
	s.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodPut, "/niches/"+n.ID, map[string]any{"name": "x"})
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/health", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `premise_http_requests_total{code="200",method="GET",route="/health"} 1`)
}
