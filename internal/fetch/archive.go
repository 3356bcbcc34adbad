package fetch

import "path"

// ArchiveLoader 把整包归档作为单个文件写入，并登记到搜索路径表；不做逐文件解压。
type ArchiveLoader struct {
	materializer *Materializer
	layout       Layout
	registry     *SearchPathRegistry
}

// NewArchiveLoader 构建归档加载器。
func NewArchiveLoader(materializer *Materializer, layout Layout, registry *SearchPathRegistry) *ArchiveLoader {
	return &ArchiveLoader{materializer: materializer, layout: layout, registry: registry}
}

// Load 写入 Layout.ArchivePath(module)。归档在编排器刷新登记表之前不可导入。
func (a *ArchiveLoader) Load(module string, blob []byte) Outcome {
	handle := a.layout.ArchivePath(module)
	if err := a.materializer.Materialize(a.layout.ArchiveRoot, path.Base(handle), blob); err != nil {
		return failed(module, err)
	}
	a.registry.Register(handle)
	return archived(module, handle)
}
