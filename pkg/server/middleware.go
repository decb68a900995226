package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Middleware wraps a handler with additional logic. It must call next
// unless it has written the response itself.
type Middleware func(next httprouter.Handle) httprouter.Handle

// MiddlewareChain is an ordered collection of Middleware. The first entry
// is the outermost.
type MiddlewareChain []Middleware

// NewMiddlewareChain creates a chain from mw.
func NewMiddlewareChain(mw ...Middleware) MiddlewareChain {
	return append(MiddlewareChain(nil), mw...)
}

// Extend returns a new chain with mw appended.
func (mc MiddlewareChain) Extend(mw ...Middleware) MiddlewareChain {
	ext := make(MiddlewareChain, 0, len(mc)+len(mw))
	return append(append(ext, mc...), mw...)
}

// Then wraps h with the chain.
func (mc MiddlewareChain) Then(h httprouter.Handle) httprouter.Handle {
	for i := len(mc) - 1; i >= 0; i-- {
		h = mc[i](h)
	}
	return h
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-Id"

// RequestID returns the id assigned by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithRequestID assigns every request a random id, echoed in the response
// headers.
func WithRequestID(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)), p)
	}
}

// WithCORS allows any origin.
func WithCORS(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		setCORSHeaders(w.Header())
		next(w, r, p)
	}
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// statusRecorder remembers the status code and size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

// WithLogging logs one line per request.
func WithLogging(logger *zap.SugaredLogger) Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next(rec, r, p)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logger.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.size,
				"remote", r.RemoteAddr,
				"request_id", RequestID(r.Context()),
				"duration", time.Since(start),
			)
		}
	}
}
