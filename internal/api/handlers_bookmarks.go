package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfbm/internal/bookmark"
	"github.com/dgallion1/pdfbm/internal/outline"
	"github.com/dgallion1/pdfbm/internal/pdfdoc"
	"github.com/dgallion1/pdfbm/internal/source"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// upload is one file taken from a multipart form.
type upload struct {
	Filename string
	Data     []byte
}

// bookmarkForm names the uploads of a request. Empty names are files that
// were not sent.
type bookmarkForm struct {
	PDF     string
	Listing string
}

func (f bookmarkForm) validate(needPDF, needListing bool) error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.PDF, validation.When(needPDF, validation.Required, validation.By(isPDFName))),
		validation.Field(&f.Listing, validation.When(needListing, validation.Required, validation.By(isListingName))),
	)
}

func isPDFName(value any) error {
	name, _ := value.(string)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return fmt.Errorf("must be a .pdf file")
	}
	return nil
}

func isListingName(value any) error {
	name, _ := value.(string)
	if !source.IsSupportedExtension(name) {
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
	}
	return nil
}

// handleBookmark attaches the uploaded listing to the uploaded PDF and
// responds with the new PDF.
func (s *Server) handleBookmark(w http.ResponseWriter, r *http.Request) {
	// Two files plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	pdf, ok := s.readUpload(w, r.MultipartForm, "pdf")
	if !ok {
		return
	}
	listing, ok := s.readUpload(w, r.MultipartForm, "bookmarks")
	if !ok {
		return
	}
	if err := (bookmarkForm{PDF: pdf.Filename, Listing: listing.Filename}).validate(true, true); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var out bytes.Buffer
	res, err := s.bookmarker.Bookmark(r.Context(),
		bytes.NewReader(pdf.Data), pdf.Filename,
		bytes.NewReader(listing.Data), listing.Filename,
		&out)
	if err != nil {
		s.writeJobError(w, err)
		return
	}

	ext := filepath.Ext(pdf.Filename)
	name := strings.TrimSuffix(pdf.Filename, ext) + s.cfg.OutputSuffix + ext
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	w.Header().Set("X-Bookmark-Entries", strconv.Itoa(res.Entries))
	w.Header().Set("X-Bookmark-Pages", strconv.Itoa(res.Pages))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Bytes())
}

// handleParse parses an uploaded listing and returns the tree as JSON.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	listing, ok := s.readUpload(w, r.MultipartForm, "bookmarks")
	if !ok {
		return
	}
	if err := (bookmarkForm{Listing: listing.Filename}).validate(false, true); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tree, err := s.bookmarker.Parse(bytes.NewReader(listing.Data), listing.Filename)
	if err != nil {
		s.writeJobError(w, err)
		return
	}
	if tree == nil {
		tree = bookmark.Tree{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename":  listing.Filename,
		"entries":   tree.Count(),
		"depth":     tree.Depth(),
		"bookmarks": tree,
	})
}

// handleExport responds with the existing outline of an uploaded PDF as a
// plain listing.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	pdf, ok := s.readUpload(w, r.MultipartForm, "pdf")
	if !ok {
		return
	}
	if err := (bookmarkForm{PDF: pdf.Filename}).validate(true, false); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := pdfdoc.Read(bytes.NewReader(pdf.Data), pdf.Filename)
	if err != nil {
		s.writeJobError(w, err)
		return
	}
	var out bytes.Buffer
	if err := s.bookmarker.ExportDocument(doc, &out); err != nil {
		s.writeJobError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(out.Bytes())
}

// readUpload reads one form file, writing the error response itself when
// the file is missing or too large.
func (s *Server) readUpload(w http.ResponseWriter, form *multipart.Form, field string) (upload, bool) {
	files := form.File[field]
	if len(files) == 0 {
		jsonError(w, field+" file is required", http.StatusBadRequest)
		return upload{}, false
	}
	fh := files[0]

	f, err := fh.Open()
	if err != nil {
		jsonError(w, "failed to open "+field+" file", http.StatusBadRequest)
		return upload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read "+field+" file", http.StatusInternalServerError)
		return upload{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("%s file exceeds max size (%d bytes)", field, s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return upload{}, false
	}
	return upload{Filename: sanitizeFilename(fh.Filename), Data: data}, true
}

// writeJobError maps pipeline failures to a status code. The upload is the
// only input a job has, so listing, attach and write failures are 422 and
// unreadable files 400; anything else is ours.
func (s *Server) writeJobError(w http.ResponseWriter, err error) {
	var (
		depthErr  *bookmark.MalformedDepthError
		attachErr *outline.EntryAttachError
		readErr   *bookmark.SourceReadError
		openErr   *pdfdoc.DocumentOpenError
		writeErr  *pdfdoc.DocumentWriteError
	)
	switch {
	case errors.As(err, &depthErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": err.Error(),
			"line":  depthErr.Line,
			"depth": depthErr.Depth,
		})
	case errors.As(err, &attachErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": err.Error(),
			"title": attachErr.Title,
			"page":  attachErr.Page + 1,
		})
	case errors.As(err, &writeErr):
		s.log.Warn("bookmarked pdf could not be written", "file", writeErr.Path, "error", writeErr.Err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &readErr), errors.As(err, &openErr):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("bookmark job failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
