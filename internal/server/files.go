package server

import (
	"bytes"
	"errors"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/viur-framework/flare/internal/manifest"
	"github.com/viur-framework/flare/internal/vfs"
)

// 浏览器端运行时要求 wasm 以 application/wasm 返回，部分系统 mime 表缺失该项。
var mimeOverrides = map[string]string{
	".wasm": "application/wasm",
	".py":   "text/x-python; charset=utf-8",
	".json": "application/json",
	".zip":  "application/zip",
}

type fileHandler struct {
	opts  AppOptions
	cache *artifactCache
}

func (h *fileHandler) serve(c fiber.Ctx) error {
	clean, err := vfs.Clean(c.Path())
	if err != nil || clean == "/" {
		return h.reject(c, fiber.StatusBadRequest, "invalid_path", c.Path())
	}

	info, statErr := h.opts.Root.Stat(clean)
	if statErr == nil && !info.IsDir() {
		data, err := afero.ReadFile(h.opts.Root, clean)
		if err != nil {
			return h.fail(c, clean, err)
		}
		return h.send(c, clean, data, "static")
	}

	dir, name := path.Split(clean)
	dir = path.Clean(dir)
	if dir == "/" || !isDir(h.opts.Root, dir) {
		return h.reject(c, fiber.StatusNotFound, "not_found", clean)
	}

	switch name {
	case h.opts.ManifestName:
		data, err := h.cache.get("manifest:"+dir, func() ([]byte, error) {
			files, err := manifest.Generate(h.opts.Root, dir, h.opts.Manifest)
			if err != nil {
				return nil, err
			}
			return manifest.Encode(files)
		})
		if err != nil {
			return h.fail(c, clean, err)
		}
		return h.send(c, clean, data, "generated")
	case h.opts.ArchiveName:
		if !h.opts.Zip {
			return h.reject(c, fiber.StatusNotFound, "archive_disabled", clean)
		}
		data, err := h.cache.get("archive:"+dir, func() ([]byte, error) {
			files, err := manifest.Generate(h.opts.Root, dir, h.opts.Manifest)
			if err != nil {
				return nil, err
			}
			var buf bytes.Buffer
			if err := manifest.Pack(h.opts.Root, dir, files, h.archivePrefix(dir), &buf); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		})
		if err != nil {
			return h.fail(c, clean, err)
		}
		return h.send(c, clean, data, "generated")
	}
	return h.reject(c, fiber.StatusNotFound, "not_found", clean)
}

// archivePrefix 以模块目录名作为归档内的顶层目录，共享根模块不加前缀。
func (h *fileHandler) archivePrefix(dir string) string {
	module := path.Base(dir)
	if h.opts.SharedRootModule != "" && module == h.opts.SharedRootModule {
		return ""
	}
	return module
}

func (h *fileHandler) send(c fiber.Ctx, name string, data []byte, source string) error {
	c.Set(fiber.HeaderContentType, contentType(name))
	h.opts.Logger.WithFields(logrus.Fields{
		"action":     "serve",
		"path":       name,
		"source":     source,
		"bytes":      len(data),
		"request_id": RequestID(c),
	}).Debug("file_served")
	return c.Status(fiber.StatusOK).Send(data)
}

func (h *fileHandler) reject(c fiber.Ctx, status int, code, name string) error {
	h.opts.Logger.WithFields(logrus.Fields{
		"action":     "serve",
		"path":       name,
		"status":     status,
		"request_id": RequestID(c),
	}).Debug(code)
	return c.Status(status).JSON(fiber.Map{"error": code})
}

func (h *fileHandler) fail(c fiber.Ctx, name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return h.reject(c, fiber.StatusNotFound, "not_found", name)
	}
	h.opts.Logger.WithFields(logrus.Fields{
		"action":     "serve",
		"path":       name,
		"request_id": RequestID(c),
	}).WithError(err).Error("serve_failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "serve_failed"})
}

func contentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := mimeOverrides[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return fiber.MIMEOctetStream
}

func isDir(fsys afero.Fs, name string) bool {
	ok, _ := afero.IsDir(fsys, name)
	return ok
}
