package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/viur-framework/flare/internal/config"
	"github.com/viur-framework/flare/internal/engine"
	"github.com/viur-framework/flare/internal/fetch"
	"github.com/viur-framework/flare/internal/progress"
	"github.com/viur-framework/flare/internal/transport"
	"github.com/viur-framework/flare/internal/vfs"
)

// BuildOptions 控制从配置构建 Sequencer 时的可选行为。
type BuildOptions struct {
	// Runtime 非空时覆盖配置中的运行时驱动，--dry-run 以此切换到 recorder。
	Runtime string
	Hooks   []progress.Hook
}

// Build 按“虚拟文件系统 → 传输 → 进度 → 编排器 → 运行时驱动”的顺序装配引导所需组件。
func Build(cfg *config.Config, logger *logrus.Logger, opts BuildOptions) (*Sequencer, error) {
	g := cfg.Global

	driverKey := g.Runtime
	if opts.Runtime != "" {
		driverKey = opts.Runtime
	}
	driver, ok := engine.Resolve(driverKey)
	if !ok {
		return nil, fmt.Errorf("runtime %s is not registered", driverKey)
	}

	tree, err := vfs.New(g.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init virtual filesystem: %w", err)
	}

	transportOpts := transport.Options{Timeout: g.FetchTimeout.DurationValue()}
	if cfg.S3.Endpoint != "" {
		transportOpts.S3 = &transport.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		}
	}
	fetcher, err := transport.NewDefault(transportOpts)
	if err != nil {
		return nil, fmt.Errorf("init transport: %w", err)
	}

	hooks := append([]progress.Hook{progress.LogHook{Logger: logger}}, opts.Hooks...)
	state := progress.New(logger, hooks...)

	orchestrator, err := fetch.NewOrchestrator(fetch.Options{
		FS:      tree,
		Fetcher: fetcher,
		Layout: fetch.Layout{
			InstallRoot:      g.InstallRoot,
			ArchiveRoot:      g.ArchiveRoot,
			SharedRootModule: g.SharedRootModule,
			ArchiveName:      g.ArchiveName,
			ManifestName:     g.ManifestName,
			ArchiveFirst:     g.ArchiveFirst,
		},
		Progress:             state,
		Logger:               logger,
		MaxConcurrentFetches: g.MaxConcurrentFetches,
		MarkLoaded:           fetch.MarkPolicy(g.MarkLoaded),
	})
	if err != nil {
		return nil, err
	}

	return New(Options{
		Driver: driver,
		EngineOptions: engine.Options{
			FS:          tree,
			InstallRoot: g.InstallRoot,
			Interpreter: g.Interpreter,
			Logger:      logger,
		},
		Orchestrator: orchestrator,
		Progress:     state,
		Logger:       logger,
	})
}
