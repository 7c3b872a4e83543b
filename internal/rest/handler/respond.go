// Package handler implements the REST API endpoints.
package handler

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
)

// maxBodyBytes caps request body reads; icon payloads are the largest
// accepted input and stay well under this.
const maxBodyBytes = 1 << 20

// ErrMissingCaller is returned when an endpoint requiring identity is called
// without the X-User-ID header.
var ErrMissingCaller = errors.New("missing or invalid X-User-ID header")

// writeJSON serializes a response body. Encoding errors at this point cannot
// be reported to the client anymore, so they are swallowed.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(body)
}

// writeError returns a uniform error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeBody reads and unmarshals a request body into dst.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}

	return sonic.Unmarshal(body, dst)
}

// callerID extracts the authenticated user ID forwarded by the edge.
func callerID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMissingCaller
	}

	return id, nil
}

// clientIP returns the request's remote address with the port stripped.
// The RealIP middleware has already resolved forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// queryInt parses an integer query parameter, returning def when absent or
// malformed.
func queryInt(r *http.Request, name string, def int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}

	return value
}

// pathID parses a numeric path segment.
func pathID(value string) (int64, bool) {
	id, err := strconv.ParseInt(value, 10, 64)

	return id, err == nil && id > 0
}
