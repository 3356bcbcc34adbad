package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/viur-framework/flare/internal/config"
	"github.com/viur-framework/flare/internal/logging"
)

func newCheckConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and print the effective values",
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

			fields := logging.BaseFields("check_config", path)
			fields["modules"] = config.ModuleModes(cfg.Modules)
			fields["runtime"] = cfg.Global.Runtime
			fields["result"] = "ok"
			logger.WithFields(fields).Info("config_valid")

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("输出配置失败: %w", err)
			}
			_, err = stdOut.Write(out)
			return err
		},
	}
}
