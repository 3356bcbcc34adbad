// Package process runs module code with a host Python interpreter. The
// virtual filesystem must be disk-backed: search paths and the install root
// are translated to host directories and handed to the interpreter through
// PYTHONPATH, so archives registered on the search path are imported with the
// interpreter's native zipimport support. Every RunAsync starts a fresh
// interpreter, which is what makes InvalidateCaches a bookkeeping step here.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/viur-framework/flare/internal/engine"
	"github.com/viur-framework/flare/internal/vfs"
)

func init() {
	engine.MustRegister(engine.Driver{
		Key:          "process",
		Description:  "executes module code with a host Python interpreter",
		RequiresDisk: true,
		New: func(ctx context.Context, opts engine.Options) (engine.Runtime, error) {
			return New(opts)
		},
	})
}

// 探测 import 是否可解析，缺失的模块名逐行输出。
const probeScript = `import importlib.util, sys
for name in sys.argv[1:]:
    try:
        found = importlib.util.find_spec(name) is not None
    except Exception:
        found = False
    if not found:
        print(name)
`

// runner 执行一次解释器调用，返回 stdout/stderr。
type runner func(ctx context.Context, env []string, stdin string, args ...string) (string, string, error)

// Runtime 以子进程方式执行代码。
type Runtime struct {
	interpreter string
	fs          vfs.FS
	hostInstall string
	logger      *logrus.Logger
	run         runner

	mu          sync.Mutex
	searchPaths []string
	loaded      map[string]string
	generation  int
}

// New 解析解释器并准备宿主机上的安装目录。
func New(opts engine.Options) (*Runtime, error) {
	if opts.FS == nil {
		return nil, errors.New("process runtime requires a filesystem")
	}
	hostInstall := opts.FS.HostPath(opts.InstallRoot)
	if hostInstall == "" {
		return nil, errors.New("process runtime requires a disk-backed filesystem (set StoragePath)")
	}
	if err := os.MkdirAll(hostInstall, 0o755); err != nil {
		return nil, fmt.Errorf("create install root: %w", err)
	}

	interpreter, err := lookupInterpreter(opts.Interpreter)
	if err != nil {
		return nil, err
	}

	logger := opts.LoggerOrDiscard()
	logger.WithFields(logrus.Fields{
		"action":      "runtime",
		"interpreter": interpreter,
		"install":     hostInstall,
	}).Debug("runtime_acquired")

	return &Runtime{
		interpreter: interpreter,
		fs:          opts.FS,
		hostInstall: hostInstall,
		logger:      logger,
		run:         execRunner(interpreter),
		loaded:      make(map[string]string),
	}, nil
}

// lookupInterpreter 依次尝试配置的解释器与 python3/python。
func lookupInterpreter(preferred string) (string, error) {
	candidates := []string{preferred, "python3", "python"}
	tried := make([]string, 0, len(candidates))
	seen := map[string]struct{}{}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		tried = append(tried, c)
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter found (tried %s)", strings.Join(tried, ", "))
}

func execRunner(interpreter string) runner {
	return func(ctx context.Context, env []string, stdin string, args ...string) (string, string, error) {
		cmd := exec.CommandContext(ctx, interpreter, args...)
		cmd.Env = env
		cmd.Stdin = strings.NewReader(stdin)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		err := cmd.Run()
		return stdout.String(), stderr.String(), err
	}
}

// Interpreter 返回实际使用的解释器路径。
func (r *Runtime) Interpreter() string {
	return r.interpreter
}

func (r *Runtime) LoadPackages(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	args := append([]string{"-m", "pip", "install", "--quiet", "--disable-pip-version-check", "--target", r.hostInstall}, names...)
	if _, stderr, err := r.run(ctx, r.env(), "", args...); err != nil {
		return fmt.Errorf("install packages %s: %w: %s", strings.Join(names, ","), err, tail(stderr))
	}
	r.logger.WithFields(logrus.Fields{
		"action":   "runtime",
		"packages": names,
	}).Info("packages_installed")
	return nil
}

// LoadPackagesFromImports 只报告无法解析的 import：宿主解释器没有可信的包索引可供自动安装。
func (r *Runtime) LoadPackagesFromImports(ctx context.Context, code string) error {
	names := engine.FindImports(code)
	if len(names) == 0 {
		return nil
	}
	args := append([]string{"-c", probeScript}, names...)
	stdout, stderr, err := r.run(ctx, r.env(), "", args...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.WithFields(logrus.Fields{
			"action": "runtime",
			"error":  tail(stderr),
		}).Warn("import_probe_failed")
		return nil
	}
	missing := strings.Fields(stdout)
	if len(missing) > 0 {
		r.logger.WithFields(logrus.Fields{
			"action":  "runtime",
			"missing": missing,
		}).Warn("imports_unresolved")
	}
	return nil
}

func (r *Runtime) RunAsync(ctx context.Context, code string) (string, error) {
	stdout, stderr, err := r.run(ctx, r.env(), code, "-")
	if err != nil {
		return stdout, fmt.Errorf("run code: %w: %s", err, tail(stderr))
	}
	return stdout, nil
}

func (r *Runtime) AddSearchPaths(paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range paths {
		host := r.fs.HostPath(p)
		if host == "" {
			return fmt.Errorf("search path %s has no host location", p)
		}
		r.searchPaths = append(r.searchPaths, host)
	}
	return nil
}

func (r *Runtime) MarkLoaded(modules []string, channel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range modules {
		r.loaded[m] = channel
	}
	return nil
}

func (r *Runtime) InvalidateCaches() error {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.mu.Unlock()
	r.logger.WithFields(logrus.Fields{
		"action":     "runtime",
		"generation": gen,
	}).Debug("import_caches_invalidated")
	return nil
}

// Loaded 返回已登记的模块。
func (r *Runtime) Loaded() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.loaded))
	for k, v := range r.loaded {
		out[k] = v
	}
	return out
}

// env 构造子进程环境：搜索路径按登记顺序排在安装目录之前。
func (r *Runtime) env() []string {
	r.mu.Lock()
	entries := append(append([]string(nil), r.searchPaths...), r.hostInstall)
	r.mu.Unlock()

	env := make([]string, 0, len(os.Environ())+3)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PYTHONPATH=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"PYTHONPATH="+strings.Join(entries, string(os.PathListSeparator)),
		"PYTHONDONTWRITEBYTECODE=1",
		"PYTHONNOUSERSITE=1",
	)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	const limit = 2048
	if len(s) > limit {
		return "..." + s[len(s)-limit:]
	}
	return s
}
