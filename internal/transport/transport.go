package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Response 是一次抓取的结果。
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// OK 表示 2xx 响应。
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher 对单个资源发起一次 GET，不做任何重试。
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, rawURL string) (*Response, error)

// Fetch makes FetcherFunc satisfy Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	return f(ctx, rawURL)
}

// Mux 按 URL scheme 分派到具体 Fetcher。
type Mux struct {
	fetchers map[string]Fetcher
}

// NewMux 构建空的 scheme 分派器。
func NewMux() *Mux {
	return &Mux{fetchers: make(map[string]Fetcher)}
}

// Handle 为一个或多个 scheme 注册 Fetcher，后注册者覆盖先注册者。
func (m *Mux) Handle(f Fetcher, schemes ...string) {
	for _, scheme := range schemes {
		m.fetchers[strings.ToLower(scheme)] = f
	}
}

// Fetch 解析 scheme 并转交给对应 Fetcher。
func (m *Mux) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	f, ok := m.fetchers[strings.ToLower(parsed.Scheme)]
	if !ok {
		return nil, fmt.Errorf("unsupported scheme %q in %s", parsed.Scheme, rawURL)
	}
	return f.Fetch(ctx, rawURL)
}

// JoinURL 把相对路径逐段转义后拼接到 base 之后，base 末尾的 / 会被忽略。
func JoinURL(base, relative string) string {
	segments := strings.Split(strings.TrimLeft(relative, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
