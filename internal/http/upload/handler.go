package upload

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/posrecon/internal/importer"
	"github.com/MrJamesThe3rd/posrecon/internal/importer/record"
	"github.com/MrJamesThe3rd/posrecon/internal/upload"
)

type Handler struct {
	svc      *upload.Service
	maxBytes int64
}

func NewHandler(svc *upload.Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/upload", h.upload)
}

type rowErrorDTO struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type uploadResponse struct {
	Status        string        `json:"status"`
	Message       string        `json:"message"`
	Filename      string        `json:"filename"`
	Accepted      int           `json:"accepted"`
	Rejected      int           `json:"rejected"`
	Staged        int           `json:"staged"`
	Encoding      string        `json:"encoding,omitempty"`
	Format        string        `json:"format,omitempty"`
	HasHeader     bool          `json:"has_header"`
	Errors        []rowErrorDTO `json:"errors"`
	StageFailures []rowErrorDTO `json:"stage_failures,omitempty"`
}

type schemaErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Missing []string `json:"missing_columns"`
	Present []string `json:"present_columns"`
}

// upload accepts a multipart "file" field or, for scripted clients, the raw body.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	filename, content, err := readUpload(r)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, "failed to read upload: "+err.Error(), http.StatusBadRequest)

		return
	}

	res, err := h.svc.Upload(r.Context(), filename, content)

	var schemaErr *record.SchemaError

	switch {
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusUnprocessableEntity, toSchemaResponse(schemaErr))
	case errors.Is(err, importer.ErrNoRowsAccepted):
		writeJSON(w, http.StatusUnprocessableEntity, toResponse(res))
	case errors.Is(err, upload.ErrNothingStaged):
		writeJSON(w, http.StatusServiceUnavailable, toResponse(res))
	case err != nil:
		slog.Error("upload failed", "file", filename, "error", err)
		http.Error(w, "failed to process upload", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusCreated, toResponse(res))
	}
}

func readUpload(r *http.Request) (string, []byte, error) {
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()

		content, err := io.ReadAll(file)

		return filepath.Base(header.Filename), content, err
	}

	if !errors.Is(err, http.ErrNotMultipart) {
		return "", nil, err
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}

	if len(content) == 0 {
		return "", nil, errors.New("empty body")
	}

	name := r.URL.Query().Get("filename")
	if name == "" {
		name = "upload"
	}

	return filepath.Base(name), content, nil
}

func toResponse(res *upload.Result) uploadResponse {
	resp := uploadResponse{
		Status:   res.Status,
		Message:  res.Message,
		Filename: res.Filename,
		Staged:   res.Staged,
		Errors:   []rowErrorDTO{},
	}

	if rep := res.Report; rep != nil {
		resp.Accepted = len(rep.Accepted)
		resp.Rejected = len(rep.Rejected)
		resp.Encoding = rep.Encoding
		resp.Format = string(rep.Format)
		resp.HasHeader = rep.HasHeader

		for _, re := range rep.Rejected {
			resp.Errors = append(resp.Errors, rowErrorDTO{Line: re.Line, Reason: re.Reason})
		}
	}

	for _, f := range res.StageFailures {
		resp.StageFailures = append(resp.StageFailures, rowErrorDTO{Line: f.Line, Reason: f.Err.Error()})
	}

	return resp
}

func toSchemaResponse(err *record.SchemaError) schemaErrorResponse {
	missing := make([]string, len(err.Missing))
	for i, f := range err.Missing {
		missing[i] = string(f)
	}

	return schemaErrorResponse{
		Status:  upload.StatusFailed,
		Message: err.Error(),
		Missing: missing,
		Present: err.Present,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
