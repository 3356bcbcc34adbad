package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestJoinURLEscapesSegments(t *testing.T) {
	cases := []struct {
		base, rel, want string
	}{
		{"https://cdn.example.org/core", "files.json", "https://cdn.example.org/core/files.json"},
		{"https://cdn.example.org/core/", "a/b c.py", "https://cdn.example.org/core/a/b%20c.py"},
		{"file:///srv/core", "pkg/#x.py", "file:///srv/core/pkg/%23x.py"},
	}
	for _, tc := range cases {
		if got := JoinURL(tc.base, tc.rel); got != tc.want {
			t.Fatalf("JoinURL(%q, %q) = %q, want %q", tc.base, tc.rel, got, tc.want)
		}
	}
}

func TestHTTPFetcherReportsStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/core/files.json" {
			_, _ = w.Write([]byte(`["a.py"]`))
			return
		}
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	fetcher := NewHTTPFetcher(NewClient(5 * time.Second))
	resp, err := fetcher.Fetch(context.Background(), upstream.URL+"/core/files.json")
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !resp.OK() || string(resp.Body) != `["a.py"]` {
		t.Fatalf("unexpected response: %d %s", resp.StatusCode, resp.Body)
	}

	resp, err = fetcher.Fetch(context.Background(), upstream.URL+"/core/files.zip")
	if err != nil {
		t.Fatalf("404 should not be a transport error: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusNotFound || len(resp.Body) != 0 {
		t.Fatalf("expected empty 404, got %d %s", resp.StatusCode, resp.Body)
	}
}

func TestHTTPFetcherTransportError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	addr := upstream.URL
	upstream.Close()

	if _, err := NewHTTPFetcher(nil).Fetch(context.Background(), addr+"/x"); err == nil {
		t.Fatalf("closed server should yield transport error")
	}
}

func TestNewClientTimeout(t *testing.T) {
	if NewClient(45*time.Second).Timeout != 45*time.Second {
		t.Fatalf("timeout should be applied")
	}
	if NewClient(-1).Timeout != 0 {
		t.Fatalf("negative timeout should be treated as none")
	}
}

func TestFileFetcherMapsMissingTo404(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.py"), []byte("x = 1"), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}
	fetcher := NewFileFetcher(afero.NewOsFs())
	base := "file://" + filepath.ToSlash(dir)

	resp, err := fetcher.Fetch(context.Background(), JoinURL(base, "a.py"))
	if err != nil || !resp.OK() || string(resp.Body) != "x = 1" {
		t.Fatalf("unexpected response: %+v %v", resp, err)
	}
	resp, err = fetcher.Fetch(context.Background(), JoinURL(base, "missing.py"))
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing file should be 404: %+v %v", resp, err)
	}
	resp, err = fetcher.Fetch(context.Background(), base)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("directory should be 404: %+v %v", resp, err)
	}
}

func TestMuxDispatchesByScheme(t *testing.T) {
	mux := NewMux()
	var got string
	mux.Handle(FetcherFunc(func(ctx context.Context, rawURL string) (*Response, error) {
		got = rawURL
		return &Response{URL: rawURL, StatusCode: http.StatusOK}, nil
	}), "mem")

	if _, err := mux.Fetch(context.Background(), "MEM://bucket/a"); err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if got != "MEM://bucket/a" {
		t.Fatalf("fetcher not invoked: %q", got)
	}
	if _, err := mux.Fetch(context.Background(), "ftp://host/a"); err == nil {
		t.Fatalf("unknown scheme should fail")
	}
}

func TestSplitS3URL(t *testing.T) {
	bucket, key, err := splitS3URL("s3://modules/core/files.zip")
	if err != nil || bucket != "modules" || key != "core/files.zip" {
		t.Fatalf("split mismatch: %s %s %v", bucket, key, err)
	}
	if _, _, err := splitS3URL("s3://modules"); err == nil {
		t.Fatalf("missing key should fail")
	}
}

func TestNewDefaultRegistersS3OnlyWithEndpoint(t *testing.T) {
	mux, err := NewDefault(Options{})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if _, ok := mux.fetchers["s3"]; ok {
		t.Fatalf("s3 should not be registered without endpoint")
	}
	mux, err = NewDefault(Options{S3: &S3Options{Endpoint: "localhost:9000"}})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if _, ok := mux.fetchers["s3"]; !ok {
		t.Fatalf("s3 should be registered")
	}
}
