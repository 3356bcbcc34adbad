package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/viur-framework/flare/internal/bootstrap"
	"github.com/viur-framework/flare/internal/config"
	"github.com/viur-framework/flare/internal/fetch"
	"github.com/viur-framework/flare/internal/logging"
	"github.com/viur-framework/flare/internal/progress"
	"github.com/viur-framework/flare/internal/version"
)

func newBootstrapCommand() *cobra.Command {
	var (
		dryRun       bool
		showProgress bool
	)
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Fetch every configured module and run the kickoff code",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.InitLogger(cfg.Global)
			if err != nil {
				return fmt.Errorf("初始化日志失败: %w", err)
			}

			buildOpts := bootstrap.BuildOptions{}
			if dryRun {
				buildOpts.Runtime = "recorder"
			}
			if showProgress {
				buildOpts.Hooks = append(buildOpts.Hooks, progress.TerminalHook{Out: stdErr})
			}

			// 启动遵循“配置 → 计划 → 组件装配 → 阶段执行”顺序，所有模块共享同一个虚拟文件系统与传输层。
			plan, err := bootstrap.PlanFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("构建引导计划失败: %w", err)
			}
			seq, err := bootstrap.Build(cfg, logger, buildOpts)
			if err != nil {
				return fmt.Errorf("装配引导组件失败: %w", err)
			}

			fields := logging.BaseFields("startup", path)
			fields["modules"] = config.ModuleModes(cfg.Modules)
			fields["runtime"] = cfg.Global.Runtime
			fields["dry_run"] = dryRun
			fields["version"] = version.Full()
			logger.WithFields(fields).Info("config_loaded")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := seq.Bootstrap(ctx, plan)
			if report != nil {
				printReport(report)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只抓取模块并记录运行时调用，不执行代码")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "在终端显示抓取进度")
	return cmd
}

// printReport 输出每个模块的结果以及 kickoff 的标准输出。
func printReport(report *bootstrap.Report) {
	for _, out := range report.Outcomes {
		detail := ""
		switch out.Kind {
		case fetch.OutcomeArchived:
			detail = out.Handle
		case fetch.OutcomeFileSet:
			detail = fmt.Sprintf("%d files", out.Files)
		}
		if out.Err != nil {
			detail = out.Err.Error()
		}
		fmt.Fprintf(stdOut, "%-20s %-9s %s\n", out.Module, out.Kind, detail)
	}
	if report.Output != "" {
		fmt.Fprint(stdOut, report.Output)
	}
}
