package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"premise_fetcher/internal/domain"
)

func (h *handler) listSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sources.List(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", sources)
}

type registerSourceRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

func (h *handler) registerSource(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req registerSourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	source, err := h.sources.Register(r.Context(), platform, req.URL, req.Name)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "source registered", source)
}

func (h *handler) getSource(w http.ResponseWriter, r *http.Request) {
	source, err := h.sources.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", source)
}

func (h *handler) deleteSource(w http.ResponseWriter, r *http.Request) {
	if err := h.sources.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "source and its premises deleted", nil)
}

func (h *handler) extractSource(w http.ResponseWriter, r *http.Request) {
	h.extract(w, r, chi.URLParam(r, "id"), "")
}

func (h *handler) extractPlatform(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.extract(w, r, chi.URLParam(r, "sourceId"), platform)
}

func (h *handler) extract(w http.ResponseWriter, r *http.Request, sourceID string, expected domain.Platform) {
	opts, err := fetchOptions(r.URL.Query())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.ingest.Ingest(r.Context(), sourceID, expected, opts)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("%d new premises saved", result.InsertedCount), result)
}

type analyzeRequest struct {
	URL       string `json:"url"`
	SortOrder string `json:"sortOrder"`
	Limit     int    `json:"limit"`
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.URL == "" {
		respondError(w, r, h.logger, fmt.Errorf("%w: url is required", domain.ErrValidation))
		return
	}

	analysis, err := h.ingest.Preview(r.Context(), platform, req.URL, domain.FetchOptions{
		SortOrder: req.SortOrder,
		Limit:     req.Limit,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("%d premises found", len(analysis.Premises)), analysis)
}

type itemRequest struct {
	URL string `json:"url"`
}

func (h *handler) analyzeItem(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.URL == "" {
		respondError(w, r, h.logger, fmt.Errorf("%w: url is required", domain.ErrValidation))
		return
	}

	preview, err := h.ingest.PreviewItem(r.Context(), platform, req.URL)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "premise found", preview)
}

func (h *handler) listPremises(w http.ResponseWriter, r *http.Request) {
	params, err := premiseParams(r.URL.Query())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	page, err := h.premises.List(r.Context(), params)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", page)
}

func (h *handler) getPremise(w http.ResponseWriter, r *http.Request) {
	premise, err := h.premises.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", premise)
}

func (h *handler) deletePremise(w http.ResponseWriter, r *http.Request) {
	if err := h.premises.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "premise deleted", nil)
}

type markUsedRequest struct {
	Used *bool `json:"used"`
}

func (h *handler) markUsed(w http.ResponseWriter, r *http.Request) {
	var req markUsedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.Used == nil {
		respondError(w, r, h.logger, fmt.Errorf("%w: used is required", domain.ErrValidation))
		return
	}

	premise, err := h.premises.MarkUsed(r.Context(), chi.URLParam(r, "id"), *req.Used)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "premise updated", premise)
}

func (h *handler) setCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.Category
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	premise, err := h.premises.SetCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "premise updated", premise)
}

func (h *handler) firstPerson(w http.ResponseWriter, r *http.Request) {
	text, err := h.premises.FirstPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", map[string]string{"firstPerson": text})
}

func (h *handler) listNiches(w http.ResponseWriter, r *http.Request) {
	niches, err := h.niches.List(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "", niches)
}

type nicheRequest struct {
	Name      *string  `json:"name"`
	SubNiches []string `json:"subNiches"`
}

func (h *handler) createNiche(w http.ResponseWriter, r *http.Request) {
	var req nicheRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.Name == nil {
		respondError(w, r, h.logger, fmt.Errorf("%w: name is required", domain.ErrValidation))
		return
	}

	niche, err := h.niches.Create(r.Context(), *req.Name, req.SubNiches)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "niche created", niche)
}

func (h *handler) updateNiche(w http.ResponseWriter, r *http.Request) {
	var req nicheRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	niche, err := h.niches.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.SubNiches)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "niche updated", niche)
}

type subNicheRequest struct {
	Name string `json:"name"`
}

func (h *handler) addSubNiche(w http.ResponseWriter, r *http.Request) {
	var req subNicheRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	niche, err := h.niches.AddSubNiche(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "sub-niche added", niche)
}

func (h *handler) deleteNiche(w http.ResponseWriter, r *http.Request) {
	if err := h.niches.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respond(w, http.StatusOK, "niche deleted", nil)
}
