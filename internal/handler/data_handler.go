package handler

import (
	"net/http"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/auth"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/service"
)

type DataHandler struct {
	svc *service.DataService
}

func NewDataHandler(svc *service.DataService) *DataHandler {
	return &DataHandler{svc: svc}
}

// List filters by the optional username and research_id query parameters.
func (h *DataHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.List(r.Context(), models.DataFilter{
		Username:   q.Get("username"),
		ResearchID: q.Get("research_id"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.ResearchData{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *DataHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResearchID string         `json:"research_id"`
		Detail     map[string]any `json:"detail"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	d, err := h.svc.Create(r.Context(), req.ResearchID, req.Detail, claims.Snapshot())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}
