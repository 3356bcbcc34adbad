package fetch

import (
	"errors"
	"testing"

	"github.com/viur-framework/flare/internal/vfs"
)

func TestArchiveLoaderUsesLayoutArchivePath(t *testing.T) {
	tree := vfs.NewMemory()
	layout := DefaultLayout()
	layout.ArchiveRoot = "/archives"
	registry := NewSearchPathRegistry()
	loader := NewArchiveLoader(NewMaterializer(tree), layout, registry)

	out := loader.Load("core", []byte("PK"))
	if out.Kind != OutcomeArchived {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	want := layout.ArchivePath("core")
	if out.Handle != want {
		t.Fatalf("handle 应为 %s, 实际 %s", want, out.Handle)
	}
	if data, err := tree.ReadFile(want); err != nil || string(data) != "PK" {
		t.Fatalf("归档未写入 %s: %q %v", want, data, err)
	}
	if handles := registry.Handles(); len(handles) != 1 || handles[0] != want {
		t.Fatalf("unexpected registry: %v", handles)
	}
}

func TestArchiveLoaderWriteFailure(t *testing.T) {
	registry := NewSearchPathRegistry()
	loader := NewArchiveLoader(NewMaterializer(brokenWriteFS{FS: vfs.NewMemory()}), DefaultLayout(), registry)

	out := loader.Load("core", []byte("PK"))
	var we *WriteError
	if out.Kind != OutcomeFailed || !errors.As(out.Err, &we) {
		t.Fatalf("写入失败应返回 WriteError: %+v", out)
	}
	if len(registry.Handles()) != 0 {
		t.Fatalf("失败的归档不应登记")
	}
}
