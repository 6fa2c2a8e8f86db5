package server

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/KaramelBytes/edamaster-cli/internal/batch"
	"github.com/KaramelBytes/edamaster-cli/internal/export"
	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
	"github.com/go-chi/render"
)

//go:embed templates
var templateFS embed.FS

// uploadField is the multipart field carrying participant files.
const uploadField = "files"

type errorResponse struct {
	Error string `json:"error"`
}

type recordsResponse struct {
	RunID   string           `json:"run_id"`
	Total   int              `json:"total"`
	Records []metrics.Record `json:"records"`
}

type previewPage struct {
	RunID    string
	Table    *export.PreviewTable
	Download template.URL
	Failed   []string
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.requestLog(r).Error("render index", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleExtract returns the master sheet as a CSV attachment. With no
// uploaded files there is nothing to download.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	inputs, ok := s.readUploads(w, r)
	if !ok {
		return
	}
	session := s.run(r, "extract", inputs)
	if session.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var b strings.Builder
	if err := export.WriteCSV(&b, session.Records); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultFilename+`"`)
	w.Header().Set("X-Run-ID", session.ID)
	_, _ = io.WriteString(w, b.String())
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	inputs, ok := s.readUploads(w, r)
	if !ok {
		return
	}
	session := s.run(r, "records", inputs)
	render.JSON(w, r, recordsResponse{
		RunID:   session.ID,
		Total:   len(session.Records),
		Records: session.Records,
	})
}

// handlePreview renders the first records as an HTML table together with a
// download link carrying the full sheet.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	inputs, ok := s.readUploads(w, r)
	if !ok {
		return
	}
	session := s.run(r, "preview", inputs)

	page := previewPage{
		RunID:  session.ID,
		Table:  export.Preview(session.Records, s.opts.PreviewRows),
		Failed: session.Failed,
	}
	if !session.Empty() {
		var b strings.Builder
		if err := export.WriteCSV(&b, session.Records); err != nil {
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		page.Download = template.URL("data:text/csv;charset=utf-8," + url.PathEscape(b.String()))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, "preview.html", page); err != nil {
		s.requestLog(r).Error("render preview", "error", err)
	}
}

// readUploads parses the multipart body and returns the uploaded files in
// form order. On failure it has already written the error response.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]batch.Input, bool) {
	maxSize := int64(s.opts.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return nil, false
		}
		if errors.Is(err, http.ErrNotMultipart) {
			writeError(w, r, http.StatusBadRequest, "expected multipart/form-data")
			return nil, false
		}
		writeError(w, r, http.StatusBadRequest, "invalid form")
		return nil, false
	}
	headers := r.MultipartForm.File[uploadField]
	s.requestLog(r).Debug("upload received", "files", len(headers))
	return uploadInputs(headers), true
}

// uploadInputs adapts multipart file headers to batch inputs.
func uploadInputs(headers []*multipart.FileHeader) []batch.Input {
	out := make([]batch.Input, 0, len(headers))
	for _, fh := range headers {
		h := fh
		out = append(out, batch.Input{
			Name: h.Filename,
			Open: func() (io.ReadCloser, error) {
				f, err := h.Open()
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		})
	}
	return out
}
