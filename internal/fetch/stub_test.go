package fetch

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/viur-framework/flare/internal/transport"
)

// moduleStub 模拟模块服务器：按路径返回预置内容，其余路径 404，并记录所有请求路径。
type moduleStub struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string]string
	requests []string
}

func newModuleStub(t *testing.T, files map[string]string) *moduleStub {
	t.Helper()
	stub := &moduleStub{files: files}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.requests = append(stub.requests, r.URL.Path)
		body, ok := stub.files[r.URL.Path]
		stub.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(stub.Close)
	return stub
}

func (s *moduleStub) requested(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.requests {
		if p == path {
			return true
		}
	}
	return false
}

func (s *moduleStub) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func httpFetcher() transport.Fetcher {
	return transport.NewHTTPFetcher(transport.NewClient(0))
}
