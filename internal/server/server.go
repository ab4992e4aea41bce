// Package server exposes the analysis pipeline over HTTP: a multipart
// upload endpoint returning the full analysis payload, a health check
// and optional static file serving for the upload form.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
	"github.com/custodia-labs/reportlens/internal/logger"
)

// maxUploadBytes bounds the multipart form size.
const maxUploadBytes = 25 << 20

// Server handles document uploads and runs the analysis pipeline.
type Server struct {
	analysis  driving.AnalysisService
	uploadDir string
	staticDir string
	mux       *http.ServeMux
}

// New creates the HTTP server. staticDir may be empty.
func New(analysis driving.AnalysisService, uploadDir, staticDir string) (*Server, error) {
	if err := os.MkdirAll(uploadDir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	s := &Server{
		analysis:  analysis,
		uploadDir: uploadDir,
		staticDir: staticDir,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	if staticDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	} else {
		s.mux.HandleFunc("GET /", s.handleRoot)
	}

	return s, nil
}

// ServeHTTP implements http.Handler with permissive CORS, matching the
// original single-origin deployment behind a static frontend.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "reportlens backend running")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload stores the uploaded file under the upload directory and
// runs the pipeline. Input errors return 400; extraction failures are
// the only pipeline errors that surface, as 500 with a detail string.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	path, err := s.store(file, header.Filename)
	if err != nil {
		logger.Warn("upload store failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Server error",
			"details": err.Error(),
		})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")

	analysis, err := s.analysis.Analyze(r.Context(), path, ext, header.Filename)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) || errors.Is(err, domain.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		logger.Warn("analysis failed for %s: %v", header.Filename, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Server error",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// store copies the upload into the upload directory under a
// timestamp-prefixed name, mirroring the original storage layout.
func (s *Server) store(file multipart.File, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(originalName))
	path := filepath.Join(s.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("response encode failed: %v", err)
	}
}
