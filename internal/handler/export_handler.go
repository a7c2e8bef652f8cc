package handler

import (
	"log"
	"mime"
	"net/http"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/export"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/service"
)

type ExportHandler struct {
	svc *service.ExportService
}

func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export streams the research_id workbook as an attachment.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	researchID := r.URL.Query().Get("research_id")
	art, err := h.svc.Export(r.Context(), researchID)
	if err != nil {
		log.Printf("Error: export %q failed: %v", researchID, err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer art.Close()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	http.ServeContent(w, r, art.Name, art.ModTime, art.File)
}
