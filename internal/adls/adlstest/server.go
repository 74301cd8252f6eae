// Package adlstest provides an in-memory WebHDFS store served over
// httptest, for tests of code that writes through adls.Client.
package adlstest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const webHDFSPrefix = "/webhdfs/v1"

// failure is an injected error response for one operation.
type failure struct {
	status    int
	exception string
	message   string
}

// Server is a fake Data Lake Store. Files live in memory keyed by cleaned
// remote path. Appends must arrive at the current end of file under the
// lease taken at CREATE, as the real store requires.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	leases   map[string]string
	closes   map[string]int
	failures map[string]failure
	requests int
	tokens   []string
}

// NewServer starts a fake store and registers its shutdown with t.Cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		files:    make(map[string][]byte),
		leases:   make(map[string]string),
		closes:   make(map[string]int),
		failures: make(map[string]failure),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// Put seeds a file as if it already existed remotely.
func (s *Server) Put(remotePath string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[remotePath] = append([]byte(nil), data...)
}

// File returns a copy of the stored content.
func (s *Server) File(remotePath string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.files[remotePath]

	return append([]byte(nil), data...), ok
}

// Fail makes every subsequent request for op ("CREATE" or "APPEND") fail
// with status. exception and message populate the RemoteException body.
func (s *Server) Fail(op string, status int, exception, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[op] = failure{status: status, exception: exception, message: message}
}

// Requests returns how many requests the server has received.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requests
}

// Closes returns how many CLOSE appends were received for remotePath.
func (s *Server) Closes(remotePath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closes[remotePath]
}

// BearerTokens returns the bearer tokens presented, in order.
func (s *Server) BearerTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.tokens...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
	s.tokens = append(s.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

	if !strings.HasPrefix(r.URL.Path, webHDFSPrefix+"/") {
		writeException(w, http.StatusNotFound, "FileNotFoundException", "unknown endpoint "+r.URL.Path)
		return
	}

	remotePath := strings.TrimPrefix(r.URL.Path, webHDFSPrefix)
	q := r.URL.Query()
	op := q.Get("op")

	if f, ok := s.failures[op]; ok {
		writeException(w, f.status, f.exception, f.message)
		return
	}

	switch op {
	case "CREATE":
		s.create(w, remotePath, q)
	case "APPEND":
		s.append(w, r, remotePath, q)
	default:
		writeException(w, http.StatusBadRequest, "IllegalArgumentException", "unsupported op "+op)
	}
}

func (s *Server) create(w http.ResponseWriter, remotePath string, q url.Values) {
	if _, exists := s.files[remotePath]; exists && q.Get("overwrite") != "true" {
		writeException(w, http.StatusForbidden, "FileAlreadyExistsException",
			fmt.Sprintf("CREATE failed with error 0x83090a1e (File already exists) %s", remotePath))

		return
	}

	s.files[remotePath] = nil
	s.leases[remotePath] = q.Get("leaseid")
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) append(w http.ResponseWriter, r *http.Request, remotePath string, q url.Values) {
	lease, open := s.leases[remotePath]
	if !open || lease != q.Get("leaseid") {
		writeException(w, http.StatusBadRequest, "BadOffsetException", "no open lease for "+remotePath)
		return
	}

	offset, err := strconv.ParseInt(q.Get("offset"), 10, 64)
	if err != nil || offset != int64(len(s.files[remotePath])) {
		writeException(w, http.StatusBadRequest, "BadOffsetException",
			fmt.Sprintf("offset %s does not match length %d", q.Get("offset"), len(s.files[remotePath])))

		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeException(w, http.StatusBadRequest, "IOException", err.Error())
		return
	}

	s.files[remotePath] = append(s.files[remotePath], data...)

	if q.Get("syncFlag") == "CLOSE" {
		s.closes[remotePath]++
		delete(s.leases, remotePath)
	}

	w.WriteHeader(http.StatusOK)
}

func writeException(w http.ResponseWriter, status int, exception, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("x-ms-request-id", "fake-request")
	w.WriteHeader(status)

	body := map[string]any{
		"RemoteException": map[string]string{
			"exception":     exception,
			"message":       message,
			"javaClassName": "org.apache.hadoop.security.AccessControlException",
		},
	}
	_ = json.NewEncoder(w).Encode(body)
}
