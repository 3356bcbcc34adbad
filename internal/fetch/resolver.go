package fetch

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/viur-framework/flare/internal/logging"
	"github.com/viur-framework/flare/internal/progress"
	"github.com/viur-framework/flare/internal/transport"
)

// Resolver 为单个模块选择抓取策略：先探测归档，失败后回退到文件清单。
type Resolver struct {
	fetcher  transport.Fetcher
	layout   Layout
	archives *ArchiveLoader
	files    *FileSetLoader
	progress *progress.State
	logger   *logrus.Logger
}

// NewResolver 基于 Options 构建解析器，归档句柄登记到 registry。
func NewResolver(opts Options, registry *SearchPathRegistry) *Resolver {
	materializer := NewMaterializer(opts.FS)
	return &Resolver{
		fetcher:  opts.Fetcher,
		layout:   opts.Layout,
		archives: NewArchiveLoader(materializer, opts.Layout, registry),
		files:    NewFileSetLoader(opts.Fetcher, materializer, opts.Layout, opts.Progress, opts.MaxConcurrentFetches),
		progress: opts.Progress,
		logger:   logging.OrDiscard(opts.Logger),
	}
}

// Resolve 返回模块的唯一结果，不做任何重试。
// 可选模块的清单缺失或损坏记为 Absent，必需模块则记为 Failed。
func (r *Resolver) Resolve(ctx context.Context, m Module) Outcome {
	fields := logging.ModuleFields(m.Name, m.Source, m.Optional)

	if r.layout.ArchiveFirst {
		archiveURL := transport.JoinURL(m.Source, r.layout.ArchiveName)
		resp, err := r.fetcher.Fetch(ctx, archiveURL)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return failed(m.Name, &FetchError{Module: m.Name, URL: archiveURL, Err: ctxErr})
		}
		if err == nil && resp.OK() {
			r.progress.AddExpected(1)
			out := r.archives.Load(m.Name, resp.Body)
			r.progress.Complete(m.Name + ".zip")
			return out
		}
		entry := r.logger.WithFields(fields).WithField("url", archiveURL)
		if err != nil {
			entry = entry.WithError(err)
		} else {
			entry = entry.WithField("status", resp.StatusCode)
		}
		entry.Debug("archive_probe_miss")
	}

	manifestURL := transport.JoinURL(m.Source, r.layout.ManifestName)
	resp, err := r.fetcher.Fetch(ctx, manifestURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return failed(m.Name, &FetchError{Module: m.Name, URL: manifestURL, Err: ctxErr})
		}
		return r.unavailable(m, &FetchError{Module: m.Name, URL: manifestURL, Err: err})
	}
	if !resp.OK() {
		return r.unavailable(m, &FetchError{Module: m.Name, URL: manifestURL, StatusCode: resp.StatusCode})
	}

	files, err := ParseManifest(resp.Body)
	if err != nil {
		return r.unavailable(m, &ManifestParseError{Module: m.Name, URL: manifestURL, Err: err})
	}
	return r.files.Load(ctx, m, files)
}

// unavailable 对可选模块容忍缺失，对必需模块返回失败。
func (r *Resolver) unavailable(m Module, reason error) Outcome {
	if m.Optional {
		return absent(m.Name, reason)
	}
	return failed(m.Name, reason)
}
