package fetch

import (
	"errors"
	"sync"
	"testing"

	"github.com/viur-framework/flare/internal/vfs"
)

func TestMaterializeCreatesIntermediateDirectories(t *testing.T) {
	tree := vfs.NewMemory()
	m := NewMaterializer(tree)

	if err := m.Materialize("/lib/python3.9/site-packages", "core/sub/mod.py", []byte("x = 1")); err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	for _, dir := range []string{"/lib", "/lib/python3.9", "/lib/python3.9/site-packages", "/lib/python3.9/site-packages/core", "/lib/python3.9/site-packages/core/sub"} {
		if !tree.IsDir(dir) {
			t.Fatalf("expected directory %s", dir)
		}
	}
	data, err := tree.ReadFile("/lib/python3.9/site-packages/core/sub/mod.py")
	if err != nil || string(data) != "x = 1" {
		t.Fatalf("content mismatch: %q %v", data, err)
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	tree := vfs.NewMemory()
	m := NewMaterializer(tree)
	for i := 0; i < 2; i++ {
		if err := m.Materialize("/lib", "a/b.py", []byte("same")); err != nil {
			t.Fatalf("materialize #%d error: %v", i, err)
		}
	}
	files, err := tree.Files("/")
	if err != nil {
		t.Fatalf("files error: %v", err)
	}
	if len(files) != 1 || files[0] != "/lib/a/b.py" {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestMaterializeConcurrentSiblings(t *testing.T) {
	tree := vfs.NewMemory()
	m := NewMaterializer(tree)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, name := range []string{"a/b/x", "a/b/y"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Materialize("/root", name, []byte(name))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent materialize error: %v", err)
		}
	}
	files, _ := tree.Files("/root")
	if len(files) != 2 {
		t.Fatalf("expected both files, got %v", files)
	}
	if !tree.IsDir("/root/a") || !tree.IsDir("/root/a/b") {
		t.Fatalf("shared directories should exist once")
	}
}

func TestMaterializeRejectsUnsafePaths(t *testing.T) {
	m := NewMaterializer(vfs.NewMemory())
	for _, p := range []string{"", "/etc/passwd", "../escape.py", "a//b.py", "a/./b.py"} {
		err := m.Materialize("/lib", p, []byte("x"))
		var writeErr *WriteError
		if !errors.As(err, &writeErr) {
			t.Fatalf("path %q should yield WriteError, got %v", p, err)
		}
	}
}

func TestMaterializeFileBlockingDirectory(t *testing.T) {
	tree := vfs.NewMemory()
	m := NewMaterializer(tree)
	if err := m.Materialize("/lib", "core", []byte("file")); err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if err := m.Materialize("/lib", "core/a.py", []byte("x")); err == nil {
		t.Fatalf("writing below a file should fail")
	}
}

func TestParseManifest(t *testing.T) {
	files, err := ParseManifest([]byte(" [\"a.py\", \"pkg/b.py\"]\n"))
	if err != nil || len(files) != 2 {
		t.Fatalf("unexpected parse result: %v %v", files, err)
	}
	for _, body := range []string{"", "null", "{}", "not json", `[1, 2]`, `["../x.py"]`, `["/abs.py"]`, `[""]`} {
		if _, err := ParseManifest([]byte(body)); !errors.Is(err, ErrMalformedManifest) {
			t.Fatalf("body %q should be malformed, got %v", body, err)
		}
	}
	files, err = ParseManifest([]byte("[]"))
	if err != nil || len(files) != 0 {
		t.Fatalf("empty manifest should be valid: %v %v", files, err)
	}
}

func TestLayoutModuleRoot(t *testing.T) {
	layout := DefaultLayout()
	if got := layout.ModuleRoot("core"); got != "/lib/python3.9/site-packages/core" {
		t.Fatalf("unexpected module root: %s", got)
	}
	if got := layout.ModuleRoot("packages"); got != "/lib/python3.9/site-packages" {
		t.Fatalf("shared root module should write to install root: %s", got)
	}
	if got := layout.ArchivePath("core"); got != "/core.zip" {
		t.Fatalf("unexpected archive path: %s", got)
	}
}
