package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/viur-framework/flare/internal/config"
	"github.com/viur-framework/flare/internal/logging"
)

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

// usageError 标记参数解析类错误，对应退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

// run 执行 CLI 并返回退出码，方便测试。
func run(args []string) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)

	if err := root.Execute(); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(stdErr, "解析参数失败: %v\n", err)
			return 2
		}
		fmt.Fprintln(stdErr, err.Error())
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "flare",
		Short:         "Fetch Python modules into a runtime and kick off the application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	root.PersistentFlags().String("config", "", "配置文件路径（默认 ./flare.toml，可被 FLARE_CONFIG 覆盖）")

	root.AddCommand(
		newBootstrapCommand(),
		newCheckConfigCommand(),
		newServeCommand(),
		newManifestCommand(),
		newPackCommand(),
		newVersionCommand(),
	)
	return root
}

// resolveConfigPath 按 flag > 环境变量 > 默认值的顺序决定配置路径。
func resolveConfigPath(cmd *cobra.Command) string {
	if flag, _ := cmd.Flags().GetString("config"); flag != "" {
		return flag
	}
	if env := os.Getenv("FLARE_CONFIG"); env != "" {
		return env
	}
	return config.DefaultConfigPath
}

// exactArgs 把参数个数错误归类为 usageError。
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// loadConfig 加载配置并初始化日志。
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path := resolveConfigPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, path, nil
}

// toolLogger 为不依赖配置文件的子命令构建日志。
func toolLogger(level string) (*logrus.Logger, error) {
	return logging.InitLogger(config.GlobalConfig{LogLevel: level})
}
