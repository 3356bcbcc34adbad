package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// DefaultName 是清单文件名。
const DefaultName = "files.json"

// 目录名命中以下任一项时整棵子树被跳过。
var skippedDirs = map[string]struct{}{
	"assets":   {},
	"bin":      {},
	"docs":     {},
	"examples": {},
	"scripts":  {},
	"test":     {},
	"tools":    {},
}

// 以这些前缀开头的文件视为构建脚本，不进入清单。
var skippedPrefixes = []string{"get-", "gen-", "test-"}

// Options 控制清单包含哪些文件。
type Options struct {
	// Extensions 为空时使用 .py。
	Extensions []string
	// Exclude 是相对模块根目录的 doublestar 模式。
	Exclude []string
}

// DefaultOptions 返回只收录 Python 源文件的选项。
func DefaultOptions() Options {
	return Options{Extensions: []string{".py"}}
}

// Validate 提前检查 exclude 模式，避免运行时静默失配。
func (o Options) Validate() error {
	for _, pattern := range o.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// Generate 遍历 root 并返回排序后的相对路径列表（以 / 分隔）。
func Generate(fsys afero.Fs, root string, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultOptions().Extensions
	}
	if ok, _ := afero.DirExists(fsys, root); !ok {
		return nil, fmt.Errorf("module directory %s does not exist", root)
	}

	var files []string
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if _, skip := skippedDirs[info.Name()]; skip {
				return filepath.SkipDir
			}
			if excluded(opts.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !included(info.Name(), opts.Extensions) {
			return nil
		}
		if excluded(opts.Exclude, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func included(name string, extensions []string) bool {
	if strings.Contains(name, "(") {
		return false
	}
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	ext := path.Ext(name)
	for _, want := range extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// Encode 以两空格缩进输出 JSON 数组，并带结尾换行。
func Encode(files []string) ([]byte, error) {
	if files == nil {
		files = []string{}
	}
	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write 生成清单并写入 root/name，返回收录的文件列表。
func Write(fsys afero.Fs, root, name string, opts Options) ([]string, error) {
	if name == "" {
		name = DefaultName
	}
	files, err := Generate(fsys, root, opts)
	if err != nil {
		return nil, err
	}
	data, err := Encode(files)
	if err != nil {
		return nil, err
	}
	if err := afero.WriteFile(fsys, filepath.Join(root, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return files, nil
}
