package testsupport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Reply is one scripted HTTP response.
type Reply struct {
	Status int
	Body   string
}

// JSON is shorthand for a Reply with the given status and body.
func JSON(status int, body string) Reply {
	return Reply{Status: status, Body: body}
}

// RecordedRequest captures what the fake server received.
type RecordedRequest struct {
	Method string
	Path   string
	Offset int
	Body   string
	Header http.Header
}

// PlaygroundServer is an httptest server speaking the playground API. Each
// route replays its scripted replies in order and repeats the last one once
// the script is exhausted.
type PlaygroundServer struct {
	*httptest.Server

	mu       sync.Mutex
	creates  []Reply
	outputs  map[string][]Reply
	versions []Reply
	requests []RecordedRequest
}

// NewPlaygroundServer starts a fake service and registers cleanup on t.
func NewPlaygroundServer(t testing.TB) *PlaygroundServer {
	t.Helper()

	srv := &PlaygroundServer{outputs: make(map[string][]Reply)}
	srv.Server = httptest.NewServer(http.HandlerFunc(srv.handle))
	t.Cleanup(srv.Close)
	return srv
}

// BaseURL returns the API base path served by the fake.
func (s *PlaygroundServer) BaseURL() string {
	return s.URL + "/api/v1"
}

// OnCreate scripts replies for POST /jobs.
func (s *PlaygroundServer) OnCreate(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, replies...)
}

// OnOutput scripts replies for GET /jobs/{jobID}/output.
func (s *PlaygroundServer) OnOutput(jobID string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[jobID] = append(s.outputs[jobID], replies...)
}

// OnVersions scripts replies for GET /lang/versions.
func (s *PlaygroundServer) OnVersions(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions = append(s.versions, replies...)
}

// Requests returns a copy of every request received so far.
func (s *PlaygroundServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// OutputOffsets returns the offsets requested for jobID in arrival order.
func (s *PlaygroundServer) OutputOffsets(jobID string) []int {
	prefix := "/api/v1/jobs/" + jobID + "/output"
	var offsets []int
	for _, req := range s.Requests() {
		if req.Path == prefix {
			offsets = append(offsets, req.Offset)
		}
	}
	return offsets
}

func (s *PlaygroundServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Offset: offset,
		Body:   string(body),
		Header: r.Header.Clone(),
	})

	var reply Reply
	var ok bool
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	switch {
	case r.Method == http.MethodPost && path == "/jobs":
		reply, s.creates, ok = next(s.creates)
	case r.Method == http.MethodGet && path == "/lang/versions":
		reply, s.versions, ok = next(s.versions)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/jobs/") && strings.HasSuffix(path, "/output"):
		jobID := strings.TrimSuffix(strings.TrimPrefix(path, "/jobs/"), "/output")
		var rest []Reply
		reply, rest, ok = next(s.outputs[jobID])
		s.outputs[jobID] = rest
	}
	s.mu.Unlock()

	if !ok {
		reply = JSON(http.StatusNotFound, `{"message":"not found"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}

func next(script []Reply) (Reply, []Reply, bool) {
	switch len(script) {
	case 0:
		return Reply{}, script, false
	case 1:
		return script[0], script, true
	default:
		return script[0], script[1:], true
	}
}
