package server

import (
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/viur-framework/flare/internal/manifest"
)

// ModuleInfo 描述开发服务器上的一个模块目录。
type ModuleInfo struct {
	Name        string
	HasManifest bool
	HasArchive  bool
	Files       []string
}

// ModuleIndex 列出模块树中的一级目录，每次查询都重新扫描以反映最新状态。
type ModuleIndex struct {
	root         afero.Fs
	options      manifest.Options
	manifestName string
	archiveName  string
}

// NewModuleIndex 基于 AppOptions 构建模块索引。
func NewModuleIndex(opts AppOptions) *ModuleIndex {
	index := &ModuleIndex{
		root:         opts.Root,
		options:      opts.Manifest,
		manifestName: opts.ManifestName,
		archiveName:  opts.ArchiveName,
	}
	if index.manifestName == "" {
		index.manifestName = manifest.DefaultName
	}
	if index.archiveName == "" {
		index.archiveName = manifest.DefaultArchiveName
	}
	return index
}

// List 返回按名称排序的模块，隐藏目录会被忽略。
func (i *ModuleIndex) List() ([]ModuleInfo, error) {
	entries, err := afero.ReadDir(i.root, "/")
	if err != nil {
		return nil, err
	}
	modules := make([]ModuleInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := i.Lookup(entry.Name())
		if err != nil {
			return nil, err
		}
		modules = append(modules, info)
	}
	sort.Slice(modules, func(a, b int) bool {
		return modules[a].Name < modules[b].Name
	})
	return modules, nil
}

// Lookup 返回单个模块的信息，调用方应先用 Exists 确认目录存在。
func (i *ModuleIndex) Lookup(name string) (ModuleInfo, error) {
	dir := path.Join("/", name)
	files, err := manifest.Generate(i.root, dir, i.options)
	if err != nil {
		return ModuleInfo{}, err
	}
	hasManifest, _ := afero.Exists(i.root, path.Join(dir, i.manifestName))
	hasArchive, _ := afero.Exists(i.root, path.Join(dir, i.archiveName))
	return ModuleInfo{
		Name:        name,
		HasManifest: hasManifest,
		HasArchive:  hasArchive,
		Files:       files,
	}, nil
}

// Exists 判断模块目录是否存在。
func (i *ModuleIndex) Exists(name string) bool {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return false
	}
	return isDir(i.root, path.Join("/", name))
}
