package routes

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/viur-framework/flare/internal/server"
)

// RegisterModuleRoutes 暴露 /-/modules 诊断接口，列出开发服务器当前发布的模块。
func RegisterModuleRoutes(app *fiber.App, index *server.ModuleIndex) {
	if app == nil || index == nil {
		return
	}

	app.Get("/-/modules", func(c fiber.Ctx) error {
		modules, err := index.List()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "module_scan_failed"})
		}
		return c.JSON(fiber.Map{
			"modules": encodeModules(modules),
		})
	})

	app.Get("/-/modules/:name", func(c fiber.Ctx) error {
		name := strings.TrimSpace(c.Params("name"))
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "module_name_required"})
		}
		if !index.Exists(name) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "module_not_found"})
		}
		info, err := index.Lookup(name)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "module_scan_failed"})
		}
		payload := encodeModule(info)
		payload.Files = append([]string{}, info.Files...)
		return c.JSON(payload)
	})
}

type modulePayload struct {
	Name        string   `json:"name"`
	FileCount   int      `json:"file_count"`
	HasManifest bool     `json:"has_manifest"`
	HasArchive  bool     `json:"has_archive"`
	Files       []string `json:"files,omitempty"`
}

func encodeModules(mods []server.ModuleInfo) []modulePayload {
	result := make([]modulePayload, 0, len(mods))
	for _, info := range mods {
		result = append(result, encodeModule(info))
	}
	return result
}

func encodeModule(info server.ModuleInfo) modulePayload {
	return modulePayload{
		Name:        info.Name,
		FileCount:   len(info.Files),
		HasManifest: info.HasManifest,
		HasArchive:  info.HasArchive,
	}
}
