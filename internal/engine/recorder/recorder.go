// Package recorder provides a runtime that executes nothing and records
// every call. It backs --dry-run and lets tests assert the exact sequence of
// runtime interactions a bootstrap produces.
package recorder

import (
	"context"
	"sync"

	"github.com/viur-framework/flare/internal/engine"
)

// 调用名与 engine.Runtime 的方法一一对应。
const (
	OpLoadPackages            = "load_packages"
	OpLoadPackagesFromImports = "load_packages_from_imports"
	OpRunAsync                = "run_async"
	OpAddSearchPaths          = "add_search_paths"
	OpMarkLoaded              = "mark_loaded"
	OpInvalidateCaches        = "invalidate_caches"
)

func init() {
	engine.MustRegister(engine.Driver{
		Key:         "recorder",
		Description: "records runtime calls without executing code (dry run)",
		New: func(ctx context.Context, opts engine.Options) (engine.Runtime, error) {
			return New(), nil
		},
	})
}

// Call 是一次被记录的运行时调用。
type Call struct {
	Op   string
	Args []string
}

// Runtime 记录调用；通过 FailOn 可以让指定调用返回错误。
type Runtime struct {
	mu       sync.Mutex
	calls    []Call
	failures map[string]error
	loaded   map[string]string
	paths    []string
	outputs  map[string]string
}

// New 创建空的记录运行时。
func New() *Runtime {
	return &Runtime{
		failures: make(map[string]error),
		loaded:   make(map[string]string),
		outputs:  make(map[string]string),
	}
}

// FailOn 让 op 对应的调用返回 err。
func (r *Runtime) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

// Respond 设置 RunAsync 执行 code 时返回的输出。
func (r *Runtime) Respond(code, output string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[code] = output
}

// Calls 返回调用记录的副本。
func (r *Runtime) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Ops 只返回调用名序列。
func (r *Runtime) Ops() []string {
	calls := r.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// SearchPaths 返回累计加入的搜索路径。
func (r *Runtime) SearchPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Loaded 返回已登记的模块及其来源。
func (r *Runtime) Loaded() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.loaded))
	for k, v := range r.loaded {
		out[k] = v
	}
	return out
}

func (r *Runtime) record(op string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: op, Args: append([]string(nil), args...)})
	return r.failures[op]
}

func (r *Runtime) LoadPackages(ctx context.Context, names []string) error {
	return r.record(OpLoadPackages, names...)
}

func (r *Runtime) LoadPackagesFromImports(ctx context.Context, code string) error {
	return r.record(OpLoadPackagesFromImports, engine.FindImports(code)...)
}

func (r *Runtime) RunAsync(ctx context.Context, code string) (string, error) {
	if err := r.record(OpRunAsync, code); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outputs[code], nil
}

func (r *Runtime) AddSearchPaths(paths []string) error {
	if err := r.record(OpAddSearchPaths, paths...); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
	return nil
}

func (r *Runtime) MarkLoaded(modules []string, channel string) error {
	if err := r.record(OpMarkLoaded, modules...); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range modules {
		r.loaded[m] = channel
	}
	return nil
}

func (r *Runtime) InvalidateCaches() error {
	return r.record(OpInvalidateCaches)
}
