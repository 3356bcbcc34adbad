package fetch

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/viur-framework/flare/internal/engine"
	"github.com/viur-framework/flare/internal/logging"
	"github.com/viur-framework/flare/internal/progress"
	"github.com/viur-framework/flare/internal/transport"
	"github.com/viur-framework/flare/internal/vfs"
)

// ImportSystem 是编排器在所有模块落盘后需要驱动的运行时能力。
type ImportSystem interface {
	AddSearchPaths(paths []string) error
	MarkLoaded(modules []string, channel string) error
	InvalidateCaches() error
}

// Options 汇总编排器及其组件共享的依赖。
type Options struct {
	FS       vfs.FS
	Fetcher  transport.Fetcher
	Layout   Layout
	Progress *progress.State
	Logger   *logrus.Logger
	// MaxConcurrentFetches 限制单个模块内的并发文件请求，0 表示不限制。
	MaxConcurrentFetches int
	MarkLoaded           MarkPolicy
}

// Orchestrator 并发解析所有模块，并在汇合点之后统一刷新运行时状态。
type Orchestrator struct {
	opts   Options
	logger *logrus.Logger
}

// NewOrchestrator 校验依赖并补齐布局默认值。
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.FS == nil {
		return nil, errors.New("filesystem is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	defaults := DefaultLayout()
	if opts.Layout.InstallRoot == "" {
		opts.Layout.InstallRoot = defaults.InstallRoot
	}
	if opts.Layout.ArchiveRoot == "" {
		opts.Layout.ArchiveRoot = defaults.ArchiveRoot
	}
	if opts.Layout.ArchiveName == "" {
		opts.Layout.ArchiveName = defaults.ArchiveName
	}
	if opts.Layout.ManifestName == "" {
		opts.Layout.ManifestName = defaults.ManifestName
	}
	switch opts.MarkLoaded {
	case "":
		opts.MarkLoaded = MarkAll
	case MarkAll, MarkRetrieved:
	default:
		return nil, fmt.Errorf("unknown mark policy %q", opts.MarkLoaded)
	}
	opts.Logger = logging.OrDiscard(opts.Logger)
	return &Orchestrator{opts: opts, logger: opts.Logger}, nil
}

// Layout 返回生效的布局。
func (o *Orchestrator) Layout() Layout {
	return o.opts.Layout
}

// Run 解析全部模块并等待所有结果。只要有必需模块失败就返回 *AggregateFetchError，
// 此时运行时状态不会被修改；否则依次刷新搜索路径、登记已加载模块、使导入缓存失效。
// 返回的结果与 modules 顺序一致。
func (o *Orchestrator) Run(ctx context.Context, system ImportSystem, modules []Module) ([]Outcome, error) {
	if system == nil {
		return nil, errors.New("import system is required")
	}
	seen := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("duplicate module %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}

	registry := NewSearchPathRegistry()
	resolver := NewResolver(o.opts, registry)

	outcomes := make([]Outcome, len(modules))
	var wg sync.WaitGroup
	for i, m := range modules {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = failed(m.Name, fmt.Errorf("module %s: panic: %v", m.Name, r))
				}
			}()
			outcomes[i] = resolver.Resolve(ctx, m)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	var failures []Outcome
	for i, out := range outcomes {
		m := modules[i]
		if out.Kind == OutcomeFailed && m.Optional && !isWriteFailure(out.Err) {
			o.logModule(m, out).Warn("optional_module_failed")
			outcomes[i] = absent(m.Name, out.Err)
			continue
		}
		o.logOutcome(m, out)
		if out.Kind == OutcomeFailed {
			failures = append(failures, out)
		}
	}
	if len(failures) > 0 {
		return outcomes, &AggregateFetchError{Failures: failures}
	}

	if err := o.flush(system, registry, modules, outcomes); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (o *Orchestrator) flush(system ImportSystem, registry *SearchPathRegistry, modules []Module, outcomes []Outcome) error {
	if handles := registry.Handles(); len(handles) > 0 {
		if err := system.AddSearchPaths(handles); err != nil {
			return fmt.Errorf("flush search paths: %w", err)
		}
	}

	names := make([]string, 0, len(modules))
	for i, m := range modules {
		if o.opts.MarkLoaded == MarkRetrieved && !outcomes[i].Retrieved() {
			continue
		}
		names = append(names, m.Name)
	}
	if len(names) > 0 {
		if err := system.MarkLoaded(names, engine.DefaultChannel); err != nil {
			return fmt.Errorf("mark modules loaded: %w", err)
		}
	}

	if err := system.InvalidateCaches(); err != nil {
		return fmt.Errorf("invalidate import caches: %w", err)
	}
	o.logger.WithFields(logrus.Fields{
		"action":       "fetch",
		"search_paths": registry.Handles(),
		"marked":       names,
	}).Info("modules_flushed")
	return nil
}

func (o *Orchestrator) logModule(m Module, out Outcome) *logrus.Entry {
	entry := o.logger.WithFields(logging.ModuleFields(m.Name, m.Source, m.Optional)).WithField("outcome", out.Kind.String())
	if out.Err != nil {
		entry = entry.WithError(out.Err)
	}
	return entry
}

func (o *Orchestrator) logOutcome(m Module, out Outcome) {
	entry := o.logModule(m, out)
	switch out.Kind {
	case OutcomeArchived:
		entry.WithField("handle", out.Handle).Info("module_archived")
	case OutcomeFileSet:
		entry.WithFields(logrus.Fields{
			"files": out.Files,
			"root":  path.Clean(o.opts.Layout.ModuleRoot(m.Name)),
		}).Info("module_files_loaded")
	case OutcomeAbsent:
		entry.Info("module_absent")
	default:
		entry.Error("module_failed")
	}
}

// isWriteFailure 判断失败是否源自本地写入；写入失败即使对可选模块也是致命的。
func isWriteFailure(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
