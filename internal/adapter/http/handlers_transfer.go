package adapthttp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"clockin/internal/adapter/fileformat"
	"clockin/internal/app"
	"clockin/internal/domain"
)

const maxImportBytes = 10 << 20

// handleImport accepts a multipart upload in the "file" field, or a raw body
// named by the filename query parameter.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var (
		name string
		body io.Reader
	)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		name, body = header.Filename, file
	} else {
		name = r.URL.Query().Get("filename")
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			fail(w, &domain.FormatError{Reason: "read upload", Err: err})
			return
		}
		body = bytes.NewReader(raw)
	}
	if name == "" {
		fail(w, &domain.ValidationError{Field: "file", Reason: "a .json or .csv file is required"})
		return
	}

	batch, err := fileformat.Parse(name, body)
	if err != nil {
		fail(w, err)
		return
	}

	res, err := s.transfer.Import(r.Context(), actorFrom(r), batch, app.ImportOptions{
		SkipDuplicates:     boolValue(r, "skipDuplicates"),
		Overwrite:          boolValue(r, "overwrite"),
		RecomputeDurations: boolValue(r, "recomputeDurations"),
	})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.transfer.Export(r.Context(), actorFrom(r))
	if err != nil {
		fail(w, err)
		return
	}

	var buf bytes.Buffer
	if err := fileformat.WriteExport(&buf, doc); err != nil {
		fail(w, errors.New("encode export"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileformat.ExportFilename(doc.User.Email, doc.ExportDate)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
