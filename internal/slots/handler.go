package slots

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/andesalud/citas-platform/pkg/logging"
)

// maxScheduleBytes caps uploaded schedule files at 5 MiB.
const maxScheduleBytes = 5 << 20

// ImportHandler accepts schedule uploads and loads them into the inventory.
type ImportHandler struct {
	importer *Importer
	logger   *logging.Logger
}

// NewImportHandler creates the upload handler.
func NewImportHandler(importer *Importer, logger *logging.Logger) *ImportHandler {
	if importer == nil {
		panic("slots: importer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ImportHandler{importer: importer, logger: logger}
}

// Handle processes POST /schedules/import. The body is either a raw CSV
// stream or a multipart form with a "file" part.
func (h *ImportHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxScheduleBytes)
	reader := io.Reader(r.Body)

	if err := r.ParseMultipartForm(maxScheduleBytes); err == nil {
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			http.Error(w, "multipart form must carry a \"file\" part", http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		reader = file
	}

	count, err := h.importer.Import(r.Context(), reader)
	if err != nil {
		if errors.Is(err, ErrBadSchedule) {
			h.logger.Warn("schedule upload rejected", "error", err, "imported", count)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("schedule upload failed", "error", err, "imported", count)
		http.Error(w, "schedule import failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("schedule imported", "slots", count)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]int{"created": count})
}
