package playground_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"borsch/internal/playground"
	"borsch/internal/testsupport"
	"borsch/internal/transport"
)

func newClient(t *testing.T, srv *testsupport.PlaygroundServer) *playground.Client {
	t.Helper()
	client, err := playground.NewClient(srv.BaseURL())
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return client
}

func TestCreateJobEncodesFormAndDecodesHandle(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnCreate(testsupport.JSON(http.StatusCreated, `{"job_id":"j1","output_url":"/api/v1/jobs/j1/output"}`))
	client := newClient(t, srv)

	handle, err := client.CreateJob(context.Background(), "0.1.0", `друкр("Привіт, Світе!");`)
	if err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}
	if handle.JobID != "j1" || handle.OutputURL != "/api/v1/jobs/j1/output" {
		t.Fatalf("unexpected handle: %+v", handle)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	if reqs[0].Method != http.MethodPost || reqs[0].Path != "/api/v1/jobs" {
		t.Fatalf("unexpected request: %s %s", reqs[0].Method, reqs[0].Path)
	}
	var form map[string]string
	if err := json.Unmarshal([]byte(reqs[0].Body), &form); err != nil {
		t.Fatalf("decode form: %v", err)
	}
	if form["lang_v"] != "0.1.0" || form["source_code"] != `друкр("Привіт, Світе!");` {
		t.Fatalf("unexpected form: %v", form)
	}
	if got := reqs[0].Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestCreateJobAllowsEmptySource(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnCreate(testsupport.JSON(http.StatusCreated, `{"job_id":"j0","output_url":""}`))

	if _, err := newClient(t, srv).CreateJob(context.Background(), "0.1.0", ""); err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}
	if !strings.Contains(srv.Requests()[0].Body, `"source_code":""`) {
		t.Fatalf("expected empty source to be sent, got %s", srv.Requests()[0].Body)
	}
}

func TestCreateJobServerErrorMessage(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnCreate(testsupport.JSON(http.StatusBadRequest, `{"message":"unsupported language"}`))

	_, err := newClient(t, srv).CreateJob(context.Background(), "9.9.9", "x")
	if !errors.Is(err, playground.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	var apiErr *playground.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 in error, got %#v", err)
	}
	if got := playground.UserMessage(err); got != "unsupported language" {
		t.Fatalf("unexpected user message %q", got)
	}
	if playground.Retryable(err) {
		t.Fatal("400 should not be retryable")
	}
}

func TestCreateJobUndecodableErrorBody(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnCreate(testsupport.JSON(http.StatusBadGateway, `<html>bad gateway</html>`))

	_, err := newClient(t, srv).CreateJob(context.Background(), "0.1.0", "x")
	if !errors.Is(err, playground.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if errors.Is(err, playground.ErrServer) {
		t.Fatalf("decode failure must not be reported as server error: %v", err)
	}
}

func TestCreateJobRejectsUnexpectedSuccessStatus(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnCreate(testsupport.JSON(http.StatusOK, `{"job_id":"j1","output_url":"x"}`))

	_, err := newClient(t, srv).CreateJob(context.Background(), "0.1.0", "x")
	if err == nil {
		t.Fatal("expected 200 to be rejected for create")
	}
}

func TestCreateJobMissingFieldIsDecodeError(t *testing.T) {
	for name, body := range map[string]string{
		"missing job_id":     `{"output_url":"x"}`,
		"null job_id":        `{"job_id":null,"output_url":"x"}`,
		"missing output_url": `{"job_id":"j1"}`,
		"empty job_id":       `{"job_id":"","output_url":"x"}`,
		"not json":           `job created`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := testsupport.NewPlaygroundServer(t)
			srv.OnCreate(testsupport.JSON(http.StatusCreated, body))
			_, err := newClient(t, srv).CreateJob(context.Background(), "0.1.0", "x")
			if !errors.Is(err, playground.ErrDecode) {
				t.Fatalf("expected decode error, got %v", err)
			}
		})
	}
}

func TestFetchOutputDistinguishesNullAndZeroExitCode(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnOutput("j1",
		testsupport.JSON(http.StatusOK, `{"exit_code":null,"rows":[{"id":1,"created_at":"2024-01-02T03:04:05Z","text":"Привіт, Світе!"}]}`),
		testsupport.JSON(http.StatusOK, `{"exit_code":0,"rows":[]}`),
	)
	client := newClient(t, srv)

	page, err := client.FetchOutput(context.Background(), "j1", 0)
	if err != nil {
		t.Fatalf("FetchOutput error: %v", err)
	}
	if page.Finished() {
		t.Fatal("null exit code must mean running")
	}
	if len(page.Rows) != 1 || page.Rows[0].Text != "Привіт, Світе!" || page.Rows[0].ID != 1 {
		t.Fatalf("unexpected rows: %+v", page.Rows)
	}
	if page.Rows[0].Timestamp().IsZero() {
		t.Fatal("expected parsed timestamp")
	}

	page, err = client.FetchOutput(context.Background(), "j1", 1)
	if err != nil {
		t.Fatalf("FetchOutput error: %v", err)
	}
	if !page.Finished() || *page.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", page.ExitCode)
	}
	if got := srv.OutputOffsets("j1"); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("unexpected offsets: %v", got)
	}
}

func TestFetchOutputNegativeSentinelCountsAsFinished(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnOutput("j1", testsupport.JSON(http.StatusOK, `{"exit_code":-99999,"rows":[]}`))

	page, err := newClient(t, srv).FetchOutput(context.Background(), "j1", 0)
	if err != nil {
		t.Fatalf("FetchOutput error: %v", err)
	}
	if !page.Finished() || *page.ExitCode != -99999 {
		t.Fatalf("unexpected exit code: %v", page.ExitCode)
	}
}

func TestFetchOutputStrictShape(t *testing.T) {
	for name, body := range map[string]string{
		"missing exit_code": `{"rows":[]}`,
		"missing rows":      `{"exit_code":null}`,
		"null rows":         `{"exit_code":null,"rows":null}`,
		"row missing text":  `{"exit_code":null,"rows":[{"id":1,"created_at":"t"}]}`,
		"row bad id":        `{"exit_code":null,"rows":[{"id":"one","created_at":"t","text":"x"}]}`,
		"string exit code":  `{"exit_code":"0","rows":[]}`,
		"null body":         `null`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := testsupport.NewPlaygroundServer(t)
			srv.OnOutput("j1", testsupport.JSON(http.StatusOK, body))
			_, err := newClient(t, srv).FetchOutput(context.Background(), "j1", 0)
			if !errors.Is(err, playground.ErrDecode) {
				t.Fatalf("expected decode error, got %v", err)
			}
		})
	}
}

func TestFetchOutputInvalidInput(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	client := newClient(t, srv)

	if _, err := client.FetchOutput(context.Background(), "j1", -1); !errors.Is(err, playground.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative offset, got %v", err)
	}
	if _, err := client.FetchOutput(context.Background(), " ", 0); !errors.Is(err, playground.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty job id, got %v", err)
	}
	if len(srv.Requests()) != 0 {
		t.Fatal("invalid input must not reach the network")
	}
}

func TestFetchOutputServerError(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnOutput("j1", testsupport.JSON(http.StatusInternalServerError, `{"message":"job vanished"}`))

	_, err := newClient(t, srv).FetchOutput(context.Background(), "j1", 0)
	if playground.UserMessage(err) != "job vanished" {
		t.Fatalf("unexpected message from %v", err)
	}
	if !playground.Retryable(err) {
		t.Fatal("5xx should be retryable")
	}
}

func TestTransportFailureIsTyped(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	base := srv.BaseURL()
	srv.Close()

	client, err := playground.NewClient(base)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	_, err = client.CreateJob(context.Background(), "0.1.0", "x")
	if !errors.Is(err, playground.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !playground.Retryable(err) {
		t.Fatal("transport failures should be retryable")
	}
}

func TestListLanguageVersionsPreservesOrder(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnVersions(testsupport.JSON(http.StatusOK, `["0.2.0","0.1.0","0.1.0-beta"]`))

	versions, err := newClient(t, srv).ListLanguageVersions(context.Background())
	if err != nil {
		t.Fatalf("ListLanguageVersions error: %v", err)
	}
	want := []string{"0.2.0", "0.1.0", "0.1.0-beta"}
	if strings.Join(versions, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected versions: %v", versions)
	}
}

func TestListLanguageVersionsRejectsNull(t *testing.T) {
	srv := testsupport.NewPlaygroundServer(t)
	srv.OnVersions(testsupport.JSON(http.StatusOK, `null`))

	if _, err := newClient(t, srv).ListLanguageVersions(context.Background()); !errors.Is(err, playground.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

type buildFailingDoer struct{}

func (buildFailingDoer) Do(context.Context, transport.Request) (transport.Response, error) {
	return transport.Response{}, &transport.BuildError{Method: http.MethodGet, URL: "::", Err: errors.New("bad url")}
}

func TestBuildFailureIsInvalidInput(t *testing.T) {
	client, err := playground.NewClient("http://example.invalid/api/v1", playground.WithTransport(buildFailingDoer{}))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if _, err := client.ListLanguageVersions(context.Background()); !errors.Is(err, playground.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRawOutputURL(t *testing.T) {
	client, err := playground.NewClient("http://0.0.0.0:8080/api/v1/")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if got := client.RawOutputURL("j1"); got != "http://0.0.0.0:8080/api/v1/jobs/j1/output.txt" {
		t.Fatalf("unexpected raw output url %q", got)
	}
	if got := client.BaseURL(); got != "http://0.0.0.0:8080/api/v1" {
		t.Fatalf("unexpected base url %q", got)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := playground.NewClient(""); !errors.Is(err, playground.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
