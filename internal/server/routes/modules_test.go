package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/viur-framework/flare/internal/server"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	root := afero.NewMemMapFs()
	for name, body := range map[string]string{
		"/core/__init__.py": "",
		"/core/views.py":    "",
		"/core/files.json":  "[]",
		"/ui/app.py":        "",
		"/.git/config":      "",
	} {
		if err := afero.WriteFile(root, name, []byte(body), 0o644); err != nil {
			t.Fatalf("写入 %s 失败: %v", name, err)
		}
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	opts := server.AppOptions{Logger: logger, Root: root}
	app, err := server.NewApp(opts)
	if err != nil {
		t.Fatalf("创建应用失败: %v", err)
	}
	RegisterModuleRoutes(app, server.NewModuleIndex(opts))
	return app
}

func TestModulesListing(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/-/modules", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload struct {
		Modules []modulePayload `json:"modules"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(payload.Modules) != 2 {
		t.Fatalf("hidden directories should be skipped: %+v", payload.Modules)
	}
	core := payload.Modules[0]
	if core.Name != "core" || core.FileCount != 2 || !core.HasManifest || core.HasArchive {
		t.Fatalf("unexpected core entry: %+v", core)
	}
	if len(core.Files) != 0 {
		t.Fatalf("listing should not include file lists")
	}
}

func TestModuleDetail(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/-/modules/ui", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	var payload modulePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.Name != "ui" || len(payload.Files) != 1 || payload.Files[0] != "app.py" {
		t.Fatalf("unexpected detail: %+v", payload)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/-/modules/missing", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown module, got %d", resp.StatusCode)
	}
}
