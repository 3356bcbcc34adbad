package engine

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := newRegistry()
	factory := func(ctx context.Context, opts Options) (Runtime, error) { return nil, nil }

	if err := reg.register(Driver{Key: " Fake ", New: factory}); err != nil {
		t.Fatalf("register error: %v", err)
	}
	if err := reg.register(Driver{Key: "fake", New: factory}); err == nil {
		t.Fatalf("duplicate key should fail")
	}
	if err := reg.register(Driver{Key: "nofactory"}); err == nil {
		t.Fatalf("missing factory should fail")
	}
	if _, ok := reg.resolve("FAKE"); !ok {
		t.Fatalf("resolve should normalize keys")
	}
	if list := reg.list(); len(list) != 1 || list[0].Key != "fake" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestFindImports(t *testing.T) {
	code := `
import core
import os.path, json as j
from flare.views import View  # comment import ignored
from . import sibling
try:
    import extra
except Exception:
    pass
import core
`
	got := FindImports(code)
	want := []string{"core", "os", "json", "flare", "extra"}
	if len(got) != len(want) {
		t.Fatalf("imports mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("imports mismatch at %d: %v", i, got)
		}
	}
}

func TestOptionsLoggerOrDiscard(t *testing.T) {
	base := logrus.New()
	if (Options{Logger: base}).LoggerOrDiscard() != base {
		t.Fatalf("已配置的 logger 应原样返回")
	}
	if (Options{}).LoggerOrDiscard() == nil {
		t.Fatalf("未配置时应回退到丢弃输出的 logger")
	}
}
