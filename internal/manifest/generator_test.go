package manifest

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func seedModule(t *testing.T, fsys afero.Fs, files ...string) {
	t.Helper()
	for _, name := range files {
		if err := afero.WriteFile(fsys, "/src/"+name, []byte("# "+name), 0o644); err != nil {
			t.Fatalf("写入 %s 失败: %v", name, err)
		}
	}
}

func TestGenerateFiltersSources(t *testing.T) {
	fsys := afero.NewMemMapFs()
	seedModule(t, fsys,
		"__init__.py",
		"views/home.py",
		"views/copy (1).py",
		"gen-icons.py",
		"get-runtime.py",
		"test-widgets.py",
		"docs/conf.py",
		"widgets/test/fixture.py",
		"widgets/button.py",
		"style.css",
		"vendor/big.py",
	)
	files, err := Generate(fsys, "/src", Options{Exclude: []string{"vendor/**"}})
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	want := []string{"__init__.py", "views/home.py", "widgets/button.py"}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("清单不符合预期: %v", files)
	}
}

func TestGenerateCustomExtensions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	seedModule(t, fsys, "a.py", "b.txt")
	files, err := Generate(fsys, "/src", Options{Extensions: []string{".py", ".txt"}})
	if err != nil || len(files) != 2 {
		t.Fatalf("unexpected files: %v %v", files, err)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if _, err := Generate(fsys, "/missing", DefaultOptions()); err == nil {
		t.Fatalf("missing directory should fail")
	}
	seedModule(t, fsys, "a.py")
	if _, err := Generate(fsys, "/src", Options{Exclude: []string{"[bad"}}); err == nil {
		t.Fatalf("invalid pattern should fail")
	}
}

func TestEncodeFormat(t *testing.T) {
	data, err := Encode([]string{"a.py", "b/c.py"})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	want := "[\n  \"a.py\",\n  \"b/c.py\"\n]\n"
	if string(data) != want {
		t.Fatalf("unexpected encoding: %q", data)
	}
	empty, _ := Encode(nil)
	if string(empty) != "[]\n" {
		t.Fatalf("empty manifest should be an empty array: %q", empty)
	}
}

func TestWriteStoresManifest(t *testing.T) {
	fsys := afero.NewMemMapFs()
	seedModule(t, fsys, "a.py")
	if _, err := Write(fsys, "/src", "", DefaultOptions()); err != nil {
		t.Fatalf("write error: %v", err)
	}
	data, err := afero.ReadFile(fsys, "/src/files.json")
	if err != nil || string(data) != "[\n  \"a.py\"\n]\n" {
		t.Fatalf("unexpected manifest: %q %v", data, err)
	}
}
