package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chazu/sewcustom/pkg/config"
	"github.com/chazu/sewcustom/pkg/pes"
	"github.com/chazu/sewcustom/pkg/store"
	"github.com/chazu/sewcustom/pkg/viewer"
	"github.com/julienschmidt/httprouter"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDrawing = `{"width":800,"height":900,"timestamp":"2024-05-01T10:00:00Z","strokes":[{"type":"line","color":"#000000","width":4,"coordinates":[[100,100],[300,100],[300,300]]},{"type":"line","color":"#ff0000","width":20,"coordinates":[[400,400],[600,500]]}]}`

func newTestServer(t *testing.T) (*Server, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	st, err := store.New(fs, "SewCustom", store.WithClock(func() time.Time {
		return time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)
	}))
	require.NoError(t, err)

	return New(viewer.NewApp(st, config.Default(), nil), nil), fs
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPages(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: "<h1>SewCustom</h1>"},
		{path: "/sew.html", want: "<h1>SewCustom</h1>"},
		{path: "/draw.html", want: "/save_drawing"},
		{path: "/upload.html", want: "/upload_drawing"},
		{path: "/paste.html", want: "Paste drawing JSON"},
		{path: "/test", want: "Server is working!"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rec := do(t, s, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		})
	}
}

func TestSaveAndList(t *testing.T) {
	t.Parallel()

	s, fs := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/save_drawing", sampleDrawing)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode(t, rec)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "drawing_20240501_102030.json", res["filename"])
	assert.Equal(t, "SewCustom/drawing_20240501_102030.json", res["path"])

	exists, err := afero.Exists(fs, "SewCustom/drawing_20240501_102030.json")
	require.NoError(t, err)
	assert.True(t, exists)

	rec = do(t, s, http.MethodPost, "/save_drawing", sampleDrawing)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "drawing_20240501_102030_2.json", decode(t, rec)["filename"])

	require.NoError(t, afero.WriteFile(fs, "SewCustom/notes.txt", []byte("{}"), 0o644))

	rec = do(t, s, http.MethodGet, "/list_drawings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode(t, rec)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, []interface{}{"drawing_20240501_102030_2.json", "drawing_20240501_102030.json"}, res["files"])
}

func TestListEmpty(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/list_drawings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true, "files": []}`, rec.Body.String())
}

func TestSaveInvalidJSON(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/save_drawing", `{"strokes": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, false, res["success"])
	assert.NotEmpty(t, res["error"])
}

func TestUpload(t *testing.T) {
	t.Parallel()

	s, fs := newTestServer(t)

	quoted, err := json.Marshal(sampleDrawing)
	require.NoError(t, err)

	tests := []struct {
		name     string
		body     string
		status   int
		filename string
	}{
		{name: "object data", body: `{"filename": "cat.txt", "data": ` + sampleDrawing + `}`, status: http.StatusOK, filename: "cat.json"},
		{name: "string data", body: `{"filename": "dog.json", "data": ` + string(quoted) + `}`, status: http.StatusOK, filename: "dog.json"},
		{name: "default name", body: `{"data": {"strokes": []}}`, status: http.StatusOK, filename: "unknown.json"},
		{name: "missing data", body: `{"filename": "x.txt"}`, status: http.StatusBadRequest},
		{name: "not json", body: `filename=x`, status: http.StatusBadRequest},
		{name: "bad inner json", body: `{"filename": "x.txt", "data": "{"}`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/upload_drawing", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			res := decode(t, rec)
			if tt.status != http.StatusOK {
				assert.Equal(t, false, res["success"])
				return
			}
			assert.Equal(t, tt.filename, res["filename"])
			exists, err := afero.Exists(fs, "SewCustom/"+tt.filename)
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestDrawingEndpoints(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/save_drawing", sampleDrawing)
	require.Equal(t, http.StatusOK, rec.Code)
	name := decode(t, rec)["filename"].(string)

	rec = do(t, s, http.MethodGet, "/drawings/"+name, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"strokes"`)

	rec = do(t, s, http.MethodGet, "/drawings/"+name+"/preview.svg?w=200&h=200", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `height="200"`)

	rec = do(t, s, http.MethodGet, "/drawings/"+name+"/export/pes", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="drawing_20240501_102030.pes"`, rec.Header().Get("Content-Disposition"))
	seq, err := pes.Read(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Len(t, seq.Threads, 2)

	rec = do(t, s, http.MethodGet, "/drawings/"+name+"/export/svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
}

func TestDrawingErrors(t *testing.T) {
	t.Parallel()

	s, fs := newTestServer(t)
	require.NoError(t, afero.WriteFile(fs, "SewCustom/blank.json", []byte(`{"strokes": []}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "SewCustom/ok.json", []byte(sampleDrawing), 0o644))
	require.NoError(t, afero.WriteFile(fs, "SewCustom/stripes.json", []byte(stripes(pes.MaxColors+44)), 0o644))

	tests := []struct {
		path   string
		status int
	}{
		{path: "/drawings/missing.json", status: http.StatusNotFound},
		{path: "/drawings/missing.json/preview.svg", status: http.StatusNotFound},
		{path: "/drawings/blank.json/export/pes", status: http.StatusBadRequest},
		{path: "/drawings/ok.json/export/dst", status: http.StatusBadRequest},
		{path: "/drawings/stripes.json/export/pes", status: http.StatusBadRequest},
		{path: "/drawings/ok.json/preview.svg?w=abc", status: http.StatusBadRequest},
		{path: "/nope", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rec := do(t, s, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, false, decode(t, rec)["success"])
		})
	}
}

// stripes returns a drawing of n short strokes alternating black and red,
// so every stroke is its own color run.
func stripes(n int) string {
	var b strings.Builder
	b.WriteString(`{"width":800,"height":900,"strokes":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		c := "#000000"
		if i%2 == 1 {
			c = "#ff0000"
		}
		y := 10 + i%80*10
		fmt.Fprintf(&b, `{"type":"line","color":"%s","width":4,"coordinates":[[100,%d],[200,%d]]}`, c, y, y)
	}
	b.WriteString("]}")
	return b.String()
}

func TestPreflight(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/save_drawing", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestMiddlewareChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) Middleware {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
				order = append(order, name)
				next(w, r, p)
			}
		}
	}

	h := NewMiddlewareChain(mark("a")).Extend(mark("b"), mark("c")).Then(
		func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
			order = append(order, "handler")
		})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, []string{"a", "b", "c", "handler"}, order)
}

func TestURLs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"http://localhost:8000", "http://192.168.1.5:8000"}, URLs("0.0.0.0", 8000, []string{"192.168.1.5"}))
	assert.Equal(t, []string{"http://127.0.0.1:9000"}, URLs("127.0.0.1", 9000, nil))
	assert.Equal(t, "0.0.0.0:8000", Addr("0.0.0.0", 8000))
}

func TestLanIPv4(t *testing.T) {
	t.Parallel()

	addrs := []net.Addr{
		&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)},
		&net.IPNet{IP: net.ParseIP("192.168.1.5"), Mask: net.CIDRMask(24, 32)},
		&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
		&net.IPNet{IP: net.ParseIP("192.168.1.5"), Mask: net.CIDRMask(24, 32)},
	}
	assert.Equal(t, []string{"192.168.1.5"}, lanIPv4(addrs))
}
