package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"

	"github.com/chazu/sewcustom/pkg/pes"
	"github.com/chazu/sewcustom/pkg/store"
	"github.com/chazu/sewcustom/pkg/viewer"
	"github.com/chazu/sewcustom/web"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
)

// Default preview size in pixels.
const (
	DefaultPreviewWidth  = 400
	DefaultPreviewHeight = 450
)

var errBadRequest = errors.New("bad request")

type savedResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

type listResponse struct {
	Success bool     `json:"success"`
	Files   []string `json:"files"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type uploadRequest struct {
	Filename string          `json:"filename"`
	Data     json.RawMessage `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Success: false, Error: err.Error()})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrInvalidJSON),
		errors.Is(err, store.ErrInvalidName),
		errors.Is(err, viewer.ErrUnknownFormat),
		errors.Is(err, viewer.ErrNoStitches),
		errors.Is(err, pes.ErrTooManyColors):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Errorw("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
	}
	writeError(w, status, err)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(errBadRequest, "failed to read body: %v", err)
	}
	return body, nil
}

func (s *Server) page(name string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		content, err := web.Pages.ReadFile(name)
		if err != nil {
			s.fail(w, r, errors.Wrapf(err, "missing page %s", name))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(content)
	}
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<h1>Server is working!</h1><p>Your address: %s</p>", html.EscapeString(r.RemoteAddr))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	name, err := s.store.Save(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	path, _ := s.store.Path(name)
	s.logger.Infof("saved drawing %s", name)
	writeJSON(w, http.StatusOK, savedResponse{Success: true, Filename: name, Path: path})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	files, err := s.store.List(".json")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Files: files})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req uploadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(w, r, errors.Wrapf(errBadRequest, "invalid upload request: %v", err))
		return
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		s.fail(w, r, errors.Wrap(errBadRequest, "upload has no data"))
		return
	}

	name, err := s.store.Upload(req.Filename, req.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	path, _ := s.store.Path(name)
	s.logger.Infof("uploaded drawing %s", name)
	writeJSON(w, http.StatusOK, savedResponse{Success: true, Filename: name, Path: path})
}

func (s *Server) handleDrawing(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	raw, err := s.store.ReadRaw(p.ByName("name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.Wrapf(errBadRequest, "invalid %s '%s'", key, v)
	}
	return n, nil
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	maxW, err := queryInt(r, "w", DefaultPreviewWidth)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	maxH, err := queryInt(r, "h", DefaultPreviewHeight)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.app.Preview(&buf, p.ByName("name"), maxW, maxH); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	name, format := p.ByName("name"), p.ByName("format")

	var buf bytes.Buffer
	res, err := s.app.Export(&buf, name, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	contentType := "application/octet-stream"
	if res.Format == viewer.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", viewer.OutputName(name, res.Format)))
	s.logger.Infof("exported %s as %s: %d stitches, %d colors", name, res.Format, res.Stitches, res.Colors)
	_, _ = w.Write(buf.Bytes())
}
