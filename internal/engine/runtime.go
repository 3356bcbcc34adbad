package engine

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/viur-framework/flare/internal/vfs"
)

// DefaultChannel 是 MarkLoaded 写入的来源标记。
const DefaultChannel = "default channel"

// Runtime 是引导流程依赖的运行时能力集合。
type Runtime interface {
	// LoadPackages 安装运行时自带的包。
	LoadPackages(ctx context.Context, names []string) error
	// LoadPackagesFromImports 尽力解析 code 中的第三方 import 并加载。
	LoadPackagesFromImports(ctx context.Context, code string) error
	// RunAsync 执行代码并返回其输出。
	RunAsync(ctx context.Context, code string) (string, error)
	// AddSearchPaths 按顺序把虚拟路径加入模块搜索路径。
	AddSearchPaths(paths []string) error
	// MarkLoaded 在运行时的包簿记中登记模块。
	MarkLoaded(modules []string, channel string) error
	// InvalidateCaches 使运行时的导入缓存失效，新写入的文件随后可见。
	InvalidateCaches() error
}

// Options 为驱动提供构建运行时所需的依赖。
type Options struct {
	FS          vfs.FS
	InstallRoot string
	Interpreter string
	Logger      *logrus.Logger
}

// LoggerOrDiscard 返回配置的 logger，未配置时回退到丢弃输出的 logger。
// engine 位于 config 之下，不能依赖 logging 包，这里等价于 logging.OrDiscard。
func (o Options) LoggerOrDiscard() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Factory 构建运行时实例。
type Factory func(ctx context.Context, opts Options) (Runtime, error)

// Driver 描述一个已注册的运行时驱动。
type Driver struct {
	Key         string
	Description string
	// RequiresDisk 表示运行时需要虚拟文件系统落盘。
	RequiresDisk bool
	New          Factory
}
