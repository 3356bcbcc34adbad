package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/viur-framework/flare/internal/manifest"
)

func newManifestCommand() *cobra.Command {
	var (
		watch      bool
		exclude    []string
		extensions []string
		name       string
	)
	cmd := &cobra.Command{
		Use:   "manifest <dir>",
		Short: "Write files.json for a module source directory",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := manifest.Options{Extensions: extensions, Exclude: exclude}
			if !watch {
				files, err := manifest.Write(afero.NewOsFs(), args[0], name, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdOut, "wrote %s with %d files\n", filepath.Join(args[0], name), len(files))
				return nil
			}

			logger, err := toolLogger("info")
			if err != nil {
				return fmt.Errorf("初始化日志失败: %w", err)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return manifest.Watch(ctx, args[0], manifest.WatchOptions{
				Name:    name,
				Options: opts,
				Logger:  logger,
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "监听目录变化并重新生成")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "额外排除的 doublestar 模式")
	cmd.Flags().StringSliceVar(&extensions, "ext", []string{".py"}, "收录的文件扩展名")
	cmd.Flags().StringVar(&name, "name", manifest.DefaultName, "清单文件名")
	return cmd
}

func newPackCommand() *cobra.Command {
	var (
		name    string
		out     string
		exclude []string
	)
	cmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Zip a module source directory into files.zip",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			prefix := name
			if !cmd.Flags().Changed("name") {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return err
				}
				prefix = filepath.Base(abs)
			}
			target := out
			if target == "" {
				target = filepath.Join(dir, manifest.DefaultArchiveName)
			}
			opts := manifest.DefaultOptions()
			opts.Exclude = exclude
			files, err := manifest.PackDir(afero.NewOsFs(), dir, prefix, target, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdOut, "wrote %s with %d files\n", target, len(files))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "归档内的顶层目录名，默认取目录名；传空字符串表示不加前缀")
	cmd.Flags().StringVar(&out, "out", "", "输出路径，默认 <dir>/files.zip")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "额外排除的 doublestar 模式")
	return cmd
}
