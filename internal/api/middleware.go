package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"zipcodes/internal/obs"
)

const requestIDHeader = "X-Request-ID"

// responseStats wraps a ResponseWriter to remember what was sent. Status
// starts at 200, which net/http sends when a handler writes without calling
// WriteHeader.
type responseStats struct {
	http.ResponseWriter
	status int
	size   int
}

func (rs *responseStats) WriteHeader(code int) {
	rs.status = code
	rs.ResponseWriter.WriteHeader(code)
}

func (rs *responseStats) Write(b []byte) (int, error) {
	n, err := rs.ResponseWriter.Write(b)
	rs.size += n
	return n, err
}

// withRequestID tags the request context with the caller's X-Request-ID, or
// a fresh UUID, and echoes it back on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(obs.WithRequestID(r.Context(), id)))
	})
}

// accessLog writes one line per request after the handler returns.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := &responseStats{ResponseWriter: w, status: http.StatusOK}

		defer func(start time.Time) {
			log.Printf("req_id=%s %s %s status=%d bytes=%d dur=%s",
				obs.RequestID(r.Context()), r.Method, r.URL.RequestURI(),
				stats.status, stats.size, time.Since(start).Round(time.Microsecond))
		}(time.Now())

		next.ServeHTTP(stats, r)
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
