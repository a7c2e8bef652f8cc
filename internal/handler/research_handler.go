package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/auth"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/service"
)

type ResearchHandler struct {
	svc *service.ResearchService
}

func NewResearchHandler(svc *service.ResearchService) *ResearchHandler {
	return &ResearchHandler{svc: svc}
}

type researchRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Detail      []models.FieldDescriptor `json:"detail"`
}

func (h *ResearchHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Research{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ResearchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	research, err := h.svc.Create(r.Context(), req.Title, req.Description, claims.UserID, req.Detail)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, research)
}

func (h *ResearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	research, err := h.svc.Get(r.Context(), chi.URLParam(r, "researchId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, research)
}

func (h *ResearchHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string                  `json:"title"`
		Description *string                  `json:"description"`
		Detail      []models.FieldDescriptor `json:"detail"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	research, err := h.svc.Update(r.Context(), chi.URLParam(r, "researchId"), service.ResearchPatch{
		Title:       req.Title,
		Description: req.Description,
		Detail:      req.Detail,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, research)
}

func (h *ResearchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "researchId")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
