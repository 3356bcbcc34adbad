package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/viur-framework/flare/internal/manifest"
)

// AppOptions controls how the module server resolves and builds artefacts.
type AppOptions struct {
	Logger *logrus.Logger
	// Root 是模块树根目录，每个一级子目录对应一个模块。
	Root afero.Fs
	// Zip 为 true 时缺失的 files.zip 会被即时打包，否则返回 404 让客户端回退到清单。
	Zip              bool
	Manifest         manifest.Options
	ManifestName     string
	ArchiveName      string
	SharedRootModule string
	CacheSize        int
	CacheTTL         time.Duration
}

const contextKeyRequestID = "_flare_request_id"

// NewApp builds a Fiber application serving module files below opts.Root.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Root == nil {
		return nil, errors.New("module root is required")
	}
	if opts.ManifestName == "" {
		opts.ManifestName = manifest.DefaultName
	}
	if opts.ArchiveName == "" {
		opts.ArchiveName = manifest.DefaultArchiveName
	}
	if err := opts.Manifest.Validate(); err != nil {
		return nil, err
	}
	artifacts, err := newArtifactCache(opts.CacheSize, opts.CacheTTL)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	files := &fileHandler{opts: opts, cache: artifacts}
	app.Get("/*", func(c fiber.Ctx) error {
		if isDiagnosticsPath(c.Path()) {
			return c.Next()
		}
		return files.serve(c)
	})

	return app, nil
}

// requestContextMiddleware 为每个请求生成请求 ID 并写入响应头。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return len(path) >= 3 && path[:3] == "/-/"
}
