package handler

import (
	"net/http"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/service"
)

type DashboardHandler struct {
	researchSvc *service.ResearchService
	dataSvc     *service.DataService
}

func NewDashboardHandler(researchSvc *service.ResearchService, dataSvc *service.DataService) *DashboardHandler {
	return &DashboardHandler{researchSvc: researchSvc, dataSvc: dataSvc}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	list, err := h.researchSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	total := 0
	stats := make([]map[string]any, 0, len(list))
	for _, res := range list {
		count, err := h.dataSvc.CountByResearch(r.Context(), res.ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		total += count
		stats = append(stats, map[string]any{
			"id":          res.ID,
			"title":       res.Title,
			"dataCount":   count,
			"fieldCount":  len(res.Detail),
			"createdTime": res.CreatedTime,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"researchCount": len(list),
		"dataCount":     total,
		"research":      stats,
	})
}
