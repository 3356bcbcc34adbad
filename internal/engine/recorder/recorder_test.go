package recorder

import (
	"context"
	"errors"
	"testing"

	"github.com/viur-framework/flare/internal/engine"
)

func TestRecorderIsRegistered(t *testing.T) {
	driver, ok := engine.Resolve("recorder")
	if !ok {
		t.Fatalf("recorder driver should be registered")
	}
	if driver.RequiresDisk {
		t.Fatalf("recorder must work with the in-memory filesystem")
	}
	rt, err := driver.New(context.Background(), engine.Options{})
	if err != nil || rt == nil {
		t.Fatalf("factory failed: %v", err)
	}
}

func TestRecorderRecordsCallsInOrder(t *testing.T) {
	rt := New()
	ctx := context.Background()
	rt.Respond("print(1)", "1\n")

	_ = rt.LoadPackages(ctx, []string{"micropip"})
	_ = rt.AddSearchPaths([]string{"/core.zip"})
	_ = rt.MarkLoaded([]string{"core"}, engine.DefaultChannel)
	_ = rt.InvalidateCaches()
	out, err := rt.RunAsync(ctx, "print(1)")
	if err != nil || out != "1\n" {
		t.Fatalf("unexpected run result: %q %v", out, err)
	}

	want := []string{OpLoadPackages, OpAddSearchPaths, OpMarkLoaded, OpInvalidateCaches, OpRunAsync}
	got := rt.Ops()
	if len(got) != len(want) {
		t.Fatalf("ops mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops mismatch: %v", got)
		}
	}
	if rt.Loaded()["core"] != engine.DefaultChannel {
		t.Fatalf("mark loaded should record channel")
	}
	if paths := rt.SearchPaths(); len(paths) != 1 || paths[0] != "/core.zip" {
		t.Fatalf("search paths mismatch: %v", paths)
	}
}

func TestRecorderFailOn(t *testing.T) {
	rt := New()
	boom := errors.New("boom")
	rt.FailOn(OpRunAsync, boom)
	if _, err := rt.RunAsync(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected configured failure, got %v", err)
	}
}
