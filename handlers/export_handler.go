package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-display/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export triggers the 3-page document export. A second trigger while one
// is in flight gets 409; the display shows that as a disabled button.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.exportService.Export(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
