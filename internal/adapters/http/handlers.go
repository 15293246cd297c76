package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

type uploadedFile struct {
	name        string
	contentType string
	content     []byte
}

func (rt *Router) readUpload(w http.ResponseWriter, r *http.Request) (*uploadedFile, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.rejectUpload(w, r, rt.tooLargeError())
			return nil, false
		}
		writeErrorBody(w, http.StatusBadRequest, domain.CodeInvalidRequest, "multipart field 'file' is required", nil)
		return nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, rt.maxUploadBytes+1))
	if err != nil {
		writeErrorBody(w, http.StatusBadRequest, domain.CodeInvalidRequest, "could not read uploaded file", nil)
		return nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	return &uploadedFile{name: header.Filename, contentType: contentType, content: content}, true
}

func (rt *Router) tooLargeError() error {
	return domain.NewCodedError(domain.ErrInvalidInput, domain.CodeFileTooLarge,
		fmt.Sprintf("File size exceeds maximum allowed size of %.1fMB", float64(rt.maxUploadBytes)/1024/1024),
		map[string]any{"max_size_bytes": rt.maxUploadBytes})
}

func (rt *Router) rejectUpload(w http.ResponseWriter, r *http.Request, err error) {
	if rt.svc.Metrics != nil {
		code := ""
		if coded, ok := domain.AsCoded(err); ok {
			code = coded.Code
		}
		rt.svc.Metrics.RecordRejectedUpload(serviceName, code)
	}
	writeError(w, r, err)
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	upload, ok := rt.readUpload(w, r)
	if !ok {
		return
	}

	result, err := rt.svc.Uploader.Upload(r.Context(), upload.name, upload.contentType, upload.content)
	if err != nil {
		rt.rejectUpload(w, r, err)
		return
	}
	if rt.svc.Metrics != nil {
		rt.svc.Metrics.RecordUpload(serviceName, result.Document.ContentType, len(upload.content))
	}
	writeSuccess(w, http.StatusCreated, "File uploaded successfully", result.Document)
}

func (rt *Router) listFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := optionalInt(query.Get("limit"), 0)
	if err != nil {
		writeErrorBody(w, http.StatusBadRequest, domain.CodeInvalidRequest, "limit must be an integer", nil)
		return
	}
	offset, err := optionalInt(query.Get("offset"), 0)
	if err != nil {
		writeErrorBody(w, http.StatusBadRequest, domain.CodeInvalidRequest, "offset must be an integer", nil)
		return
	}

	page, err := rt.svc.Documents.List(r.Context(), domain.ListOptions{
		Limit:    limit,
		Offset:   offset,
		Category: domain.Category(strings.TrimSpace(query.Get("category"))),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Status:     "success",
		Data:       page.Documents,
		Pagination: &page.Pagination,
	})
}

func (rt *Router) getFile(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.svc.Documents.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", doc)
}

func (rt *Router) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := rt.svc.Documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "File deleted successfully", nil)
}

func (rt *Router) diagnosePDF(w http.ResponseWriter, r *http.Request) {
	upload, ok := rt.readUpload(w, r)
	if !ok {
		return
	}
	diag, err := rt.svc.Diagnoser.Diagnose(r.Context(), upload.name, upload.contentType, upload.content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "PDF diagnostic complete", diag)
}

type reclassifyResponse struct {
	DocumentsFound    int    `json:"documents_found"`
	ReclassifyStarted bool   `json:"reclassify_started"`
	JobID             string `json:"job_id,omitempty"`
}

func (rt *Router) reclassifyAll(w http.ResponseWriter, r *http.Request) {
	stats, started, err := rt.svc.Reclassifier.Trigger(r.Context(), "api")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !started {
		writeSuccess(w, http.StatusOK, "No documents found to reclassify", reclassifyResponse{})
		return
	}
	writeSuccess(w, http.StatusAccepted,
		fmt.Sprintf("Reclassification of %d documents started", stats.Found),
		reclassifyResponse{DocumentsFound: stats.Found, ReclassifyStarted: true, JobID: stats.JobID})
}

type classifyRequest struct {
	Text   string                      `json:"text"`
	Method domain.ClassificationMethod `json:"method"`
}

type classifyResponse struct {
	CategoryPrediction domain.Distribution         `json:"category_prediction"`
	Method             domain.ClassificationMethod `json:"method"`
	Fallback           bool                        `json:"fallback"`
}

func (rt *Router) classifyText(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, rt.maxUploadBytes)).Decode(&req); err != nil {
		writeErrorBody(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid json", nil)
		return
	}
	if req.Method == "" {
		req.Method = domain.MethodChunked
	}

	result, err := rt.svc.Classifier.ClassifyText(r.Context(), req.Text, req.Method)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", classifyResponse{
		CategoryPrediction: result.Scores,
		Method:             req.Method,
		Fallback:           result.Fallback,
	})
}

func optionalInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
