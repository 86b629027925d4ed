package main

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/manifest"
	"github.com/vango-dev/fsroute/pkg/router"
)

func testEnv(key string) string {
	if key == "NO_COLOR" {
		return "1"
	}
	return ""
}

// newProject creates a project directory whose app/routes tree holds a
// page file for each route path.
func newProject(t *testing.T, routes ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, r := range routes {
		addRoute(t, dir, r)
	}
	return dir
}

func addRoute(t *testing.T, dir, route string) {
	t.Helper()
	path := filepath.Join(dir, "app", "routes", filepath.FromSlash(route), "page.go")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("package routes\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut, testEnv)
	cmd.SetArgs(append([]string{"--config", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func routeErrorCode(err error) string {
	var re *errors.RouteError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return ""
}

func TestRoutesCommand(t *testing.T) {
	dir := newProject(t, ".", "blog/[slug]", "docs/[[...slug]]", "(shop)/cart")

	out, _, err := execute(t, dir, "routes")
	if err != nil {
		t.Fatalf("routes error: %v", err)
	}

	for _, want := range []string{"ID", "/blog/[slug]", "/(shop)/cart", "/cart", "4 routes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "/(shop)/cart") > strings.Index(out, "/docs/[[...slug]]") {
		t.Errorf("routes should be listed in precedence order:\n%s", out)
	}
}

func TestRoutesCommandJSON(t *testing.T) {
	dir := newProject(t, "blog/[slug]", "files/[...path]")

	out, _, err := execute(t, dir, "routes", "--json")
	if err != nil {
		t.Fatalf("routes --json error: %v", err)
	}

	m, err := manifest.Decode(strings.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a manifest: %v\n%s", err, out)
	}
	if len(m.Routes) != 2 || m.Routes[1].Pattern != "/files/[...path]" {
		t.Errorf("Routes = %+v", m.Routes)
	}
}

func TestRoutesCommandReportsEveryViolation(t *testing.T) {
	dir := newProject(t,
		"a/[x]", "a/[y]",
		"(g)/b", "b",
		"c/[...rest]/edit",
	)

	_, _, err := execute(t, dir, "routes")

	var buildErr *router.BuildError
	if !stderrors.As(err, &buildErr) {
		t.Fatalf("error = %v, want *router.BuildError", err)
	}
	if len(buildErr.Errors) != 3 {
		t.Errorf("got %d violations, want 3: %v", len(buildErr.Errors), err)
	}

	var buf bytes.Buffer
	errors.Fprint(&buf, err)
	if !strings.Contains(buf.String(), "3 route template error(s)") {
		t.Errorf("formatted output:\n%s", buf.String())
	}
}

func TestRoutesCommandInvalidFolder(t *testing.T) {
	dir := newProject(t, "users/[id")

	_, _, err := execute(t, dir, "routes")
	if code := routeErrorCode(err); code != "R003" {
		t.Errorf("error = %v, want R003", err)
	}
}

func TestMatchCommand(t *testing.T) {
	dir := newProject(t, ".", "blog/[slug]", "docs/[[...slug]]", "files/[...path]")

	tests := []struct {
		path string
		want []string
	}{
		{"/blog/hello%20world", []string{"/blog/[slug]", `slug  "hello world"`}},
		{"/files/a/b", []string{"/files/[...path]", `path  ["a" "b"]`}},
		{"/docs", []string{"/docs/[[...slug]]", "slug  []"}},
		{"/", []string{"✓ /\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			out, _, err := execute(t, dir, "match", tt.path)
			if err != nil {
				t.Fatalf("match error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestMatchCommandJSON(t *testing.T) {
	dir := newProject(t, "docs/[[...slug]]")

	out, _, err := execute(t, dir, "match", "--json", "/docs/a/b")
	if err != nil {
		t.Fatalf("match error: %v", err)
	}

	var got struct {
		ID     string              `json:"id"`
		Params map[string][]string `json:"params"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.ID != "/docs/[[...slug]]" || len(got.Params["slug"]) != 2 {
		t.Errorf("match = %+v", got)
	}
}

func TestMatchCommandErrors(t *testing.T) {
	dir := newProject(t, "blog/[slug]")

	tests := []struct {
		path string
		code string
	}{
		{"/nope", "R040"},
		{"/blog/a/b", "R040"},
		{"/blog/a%2Fb", "R041"},
		{"/../etc", "R041"},
		{"/blog/%2e%2e", "R041"},
	}

	for _, tt := range tests {
		_, _, err := execute(t, dir, "match", tt.path)
		if code := routeErrorCode(err); code != tt.code {
			t.Errorf("match %s error = %v, want %s", tt.path, err, tt.code)
		}
	}
}

func TestGenCommand(t *testing.T) {
	dir := newProject(t, ".", "blog/[slug]")

	out, _, err := execute(t, dir, "gen")
	if err != nil {
		t.Fatalf("gen error: %v", err)
	}
	manifestPath := filepath.Join(dir, "routes.json")
	if !strings.Contains(out, "Wrote 2 routes to "+manifestPath) {
		t.Errorf("output = %q", out)
	}

	if _, _, err := execute(t, dir, "gen", "--check"); err != nil {
		t.Errorf("gen --check on a fresh manifest: %v", err)
	}

	addRoute(t, dir, "about")
	_, errOut, err := execute(t, dir, "gen", "--check")
	if err != errSilent {
		t.Errorf("gen --check on a stale manifest error = %v", err)
	}
	if !strings.Contains(errOut, "out of date") {
		t.Errorf("stderr = %q", errOut)
	}

	// The manifest still reflects the old tree.
	out, _, err = execute(t, dir, "match", "--manifest", manifestPath, "/blog/x")
	if err != nil || !strings.Contains(out, "/blog/[slug]") {
		t.Errorf("match --manifest = %q, %v", out, err)
	}
	if _, _, err := execute(t, dir, "match", "--manifest", manifestPath, "/about"); routeErrorCode(err) != "R040" {
		t.Errorf("match --manifest /about error = %v, want R040", err)
	}
}

func TestGenCommandRefusesInvalidTree(t *testing.T) {
	dir := newProject(t, "a/[x]", "a/[y]")

	if _, _, err := execute(t, dir, "gen"); err == nil {
		t.Fatal("gen should fail on colliding templates")
	}
	if _, err := os.Stat(filepath.Join(dir, "routes.json")); !os.IsNotExist(err) {
		t.Error("no manifest should be written for an invalid tree")
	}
}

func TestConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pages", "blog", "[slug]", "route.go")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := `{"routes": "pages", "pageFiles": ["route.go"]}`
	if err := os.WriteFile(filepath.Join(dir, "fsroute.json"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, dir, "routes")
	if err != nil {
		t.Fatalf("routes error: %v", err)
	}
	if !strings.Contains(out, "/blog/[slug]") {
		t.Errorf("output = %q", out)
	}

	if err := os.WriteFile(filepath.Join(dir, "fsroute.json"), []byte(`{"emptyCatchAll": "drop"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, dir, "routes"); routeErrorCode(err) != "R012" {
		t.Errorf("invalid config error = %v, want R012", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, filepath.Join(t.TempDir(), "missing"), "version", "--short")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func newTestCLI(t *testing.T, dir string, errOut io.Writer) *cli {
	t.Helper()
	c := &cli{
		out:       io.Discard,
		errOut:    errOut,
		getenv:    testEnv,
		configDir: dir,
		noColor:   true,
	}
	if err := c.setup(); err != nil {
		t.Fatal(err)
	}
	return c
}

func newTestServer(t *testing.T, dir string) *server {
	t.Helper()
	srv, err := newTestCLI(t, dir, io.Discard).newServer(context.Background(), source{})
	if err != nil {
		t.Fatalf("newServer() error: %v", err)
	}
	t.Cleanup(func() { srv.close(context.Background()) })
	return srv
}

func TestServeHandler(t *testing.T) {
	dir := newProject(t, ".", "blog/[slug]", "docs/[[...slug]]")
	srv := newTestServer(t, dir)

	tests := []struct {
		path       string
		wantStatus int
		wantID     string
	}{
		{"/blog/hello", http.StatusOK, "/blog/[slug]"},
		{"/docs", http.StatusOK, "/docs/[[...slug]]"},
		{"/", http.StatusOK, "/"},
		{"/blog", http.StatusNotFound, ""},
		{"/blog/a%2Fb", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantID == "" {
				return
			}
			var got matchOutput
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("invalid body %q: %v", rec.Body.String(), err)
			}
			if got.ID != tt.wantID {
				t.Errorf("id = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestServeEndpoints(t *testing.T) {
	dir := newProject(t, "blog/[slug]")
	srv := newTestServer(t, dir)

	srv.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blog/x", nil))
	srv.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`fsroute_requests_total{route="/blog/[slug]",status="200"} 1`,
		`fsroute_route_misses_total 1`,
		`fsroute_table_rebuilds_total{result="ok"} 1`,
		`fsroute_routes 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, routesEndpoint, nil))
	m, err := manifest.Decode(rec.Body)
	if err != nil {
		t.Fatalf("routes endpoint: %v", err)
	}
	if len(m.Routes) != 1 || m.Routes[0].ID != "/blog/[slug]" {
		t.Errorf("routes endpoint = %+v", m.Routes)
	}
}

func TestServeRebuildKeepsTableOnError(t *testing.T) {
	dir := newProject(t, "a/[x]")
	srv := newTestServer(t, dir)

	addRoute(t, dir, "a/[y]")
	if _, err := srv.rebuilder.Rebuild(context.Background()); err == nil {
		t.Fatal("Rebuild() should fail on colliding templates")
	}

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a/1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, the previous table should keep serving", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `fsroute_table_rebuilds_total{result="error"} 1`) {
		t.Error("failed rebuild should be counted")
	}
}

func TestServeStartupFailureShutsDownTracing(t *testing.T) {
	dir := newProject(t, "a/[x]", "a/[y]")

	shutdowns := 0
	orig := newTracing
	newTracing = func(config.TracingConfig, io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
		return noop.NewTracerProvider(), func(context.Context) error {
			shutdowns++
			return nil
		}, nil
	}
	t.Cleanup(func() { newTracing = orig })

	_, err := newTestCLI(t, dir, io.Discard).newServer(context.Background(), source{})
	if !stderrors.Is(err, router.ErrDuplicateTemplate) {
		t.Fatalf("newServer() error = %v, want ErrDuplicateTemplate", err)
	}
	if shutdowns != 1 {
		t.Errorf("tracer shut down %d times, want 1", shutdowns)
	}
}

// brokenWriter fails every body write, like a client that hung up.
type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) WriteHeader(int)           {}
func (w *brokenWriter) Write([]byte) (int, error) { return 0, stderrors.New("connection reset") }

func TestServeLogsFailedWrites(t *testing.T) {
	dir := newProject(t, "blog/[slug]")

	var logs bytes.Buffer
	srv, err := newTestCLI(t, dir, &logs).newServer(context.Background(), source{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { srv.close(context.Background()) })

	for target, want := range map[string]string{
		"/blog/x":      "writing match response failed",
		routesEndpoint: "writing routes response failed",
	} {
		srv.handler.ServeHTTP(&brokenWriter{header: http.Header{}}, httptest.NewRequest(http.MethodGet, target, nil))
		if !strings.Contains(logs.String(), want) {
			t.Errorf("GET %s: logs missing %q:\n%s", target, want, logs.String())
		}
	}
}
