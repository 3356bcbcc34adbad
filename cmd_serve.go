package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/viur-framework/flare/internal/manifest"
	"github.com/viur-framework/flare/internal/server"
	"github.com/viur-framework/flare/internal/server/routes"
	"github.com/viur-framework/flare/internal/version"
)

type serveOptions struct {
	root       string
	listen     string
	zip        bool
	sharedRoot string
	cacheTTL   time.Duration
	exclude    []string
	logLevel   string
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve module trees for local development",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := toolLogger(opts.logLevel)
			if err != nil {
				return fmt.Errorf("初始化日志失败: %w", err)
			}
			app, err := buildServeApp(opts, logger)
			if err != nil {
				return err
			}
			return listen(app, opts, logger)
		},
	}
	cmd.Flags().StringVar(&opts.root, "root", ".", "模块树根目录，每个子目录是一个模块")
	cmd.Flags().StringVar(&opts.listen, "listen", ":8080", "监听地址")
	cmd.Flags().BoolVar(&opts.zip, "zip", false, "缺失 files.zip 时即时打包")
	cmd.Flags().StringVar(&opts.sharedRoot, "shared-root", "packages", "归档内不加顶层目录的模块名")
	cmd.Flags().DurationVar(&opts.cacheTTL, "cache-ttl", 5*time.Second, "即时生成的清单与归档的缓存时间")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "额外排除的 doublestar 模式")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "日志级别")
	return cmd
}

func buildServeApp(opts serveOptions, logger *logrus.Logger) (*fiber.App, error) {
	abs, err := filepath.Abs(opts.root)
	if err != nil {
		return nil, fmt.Errorf("解析模块根目录失败: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("模块根目录不存在: %s", abs)
	}

	manifestOpts := manifest.DefaultOptions()
	manifestOpts.Exclude = opts.exclude
	appOpts := server.AppOptions{
		Logger:           logger,
		Root:             afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), abs)),
		Zip:              opts.zip,
		Manifest:         manifestOpts,
		SharedRootModule: opts.sharedRoot,
		CacheTTL:         opts.cacheTTL,
	}
	app, err := server.NewApp(appOpts)
	if err != nil {
		return nil, err
	}
	routes.RegisterModuleRoutes(app, server.NewModuleIndex(appOpts))
	return app, nil
}

func listen(app *fiber.App, opts serveOptions, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(opts.listen, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	logger.WithFields(logrus.Fields{
		"action":  "listen",
		"address": opts.listen,
		"root":    opts.root,
		"zip":     opts.zip,
		"version": version.Full(),
	}).Info("module_server_started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
