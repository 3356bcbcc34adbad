package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/viur-framework/flare/internal/progress"
	"github.com/viur-framework/flare/internal/transport"
)

// FileSetLoader 并发抓取清单中的每个文件并交给 Materializer 落盘。
type FileSetLoader struct {
	fetcher      transport.Fetcher
	materializer *Materializer
	layout       Layout
	progress     *progress.State
	limit        int
}

// NewFileSetLoader 构建逐文件加载器；limit <= 0 表示不限制并发。
func NewFileSetLoader(fetcher transport.Fetcher, materializer *Materializer, layout Layout, state *progress.State, limit int) *FileSetLoader {
	return &FileSetLoader{
		fetcher:      fetcher,
		materializer: materializer,
		layout:       layout,
		progress:     state,
		limit:        limit,
	}
}

// Load 抓取全部文件；任一文件失败则整个模块失败，已写入的文件不回滚。
// 兄弟请求不会因为失败而被取消，每个请求结束后进度都会加一。
func (l *FileSetLoader) Load(ctx context.Context, m Module, files []string) Outcome {
	l.progress.AddExpected(len(files))
	root := l.layout.ModuleRoot(m.Name)

	var g errgroup.Group
	if l.limit > 0 {
		g.SetLimit(l.limit)
	}
	for _, file := range files {
		g.Go(func() error {
			return l.loadFile(ctx, m, root, file)
		})
	}
	if err := g.Wait(); err != nil {
		return failed(m.Name, err)
	}
	return fileSet(m.Name, len(files))
}

func (l *FileSetLoader) loadFile(ctx context.Context, m Module, root, file string) error {
	url := transport.JoinURL(m.Source, file)
	resp, err := l.fetcher.Fetch(ctx, url)
	l.progress.Complete(m.Name + "/" + file)
	if err != nil {
		return &FetchError{Module: m.Name, URL: url, Err: err}
	}
	if !resp.OK() {
		return &FetchError{Module: m.Name, URL: url, StatusCode: resp.StatusCode}
	}
	return l.materializer.Materialize(root, file, resp.Body)
}
