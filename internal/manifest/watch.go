package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const defaultDebounce = 300 * time.Millisecond

// WatchOptions 控制监听行为。
type WatchOptions struct {
	Name     string
	Options  Options
	Debounce time.Duration
	Logger   *logrus.Logger
	// OnWrite 在每次重新生成清单后调用，可为空。
	OnWrite func(files []string)
}

// Watch 先生成一次清单，然后在文件新增、删除或重命名时去抖后重新生成，直到 ctx 结束。
// 新建的子目录会自动加入监听。
func Watch(ctx context.Context, root string, opts WatchOptions) error {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}

	osfs := afero.NewOsFs()
	regenerate := func() {
		files, err := Write(osfs, abs, opts.Name, opts.Options)
		fields := logrus.Fields{"action": "manifest", "root": abs}
		if err != nil {
			logger.WithFields(fields).WithError(err).Error("manifest_write_failed")
			return
		}
		logger.WithFields(fields).WithField("files", len(files)).Info("manifest_written")
		if opts.OnWrite != nil {
			opts.OnWrite(files)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := addTree(fsw, abs); err != nil {
		return err
	}
	regenerate()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watch %s: event channel closed", abs)
			}
			if filepath.Base(evt.Name) == opts.Name {
				continue
			}
			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := addTree(fsw, evt.Name); err != nil {
						logger.WithError(err).WithField("action", "manifest").Warn("watch_add_failed")
					}
				}
			}
			mu.Lock()
			if timer == nil {
				timer = time.AfterFunc(opts.Debounce, func() {
					if ctx.Err() == nil {
						regenerate()
					}
				})
			} else {
				timer.Reset(opts.Debounce)
			}
			mu.Unlock()
		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watch %s: error channel closed", abs)
			}
			logger.WithError(err).WithField("action", "manifest").Warn("watch_error")
		}
	}
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if _, skip := skippedDirs[d.Name()]; skip && p != root {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
