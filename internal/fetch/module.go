package fetch

import "path"

// Module 是一次运行中不可变的模块描述。
type Module struct {
	Name     string
	Source   string
	Optional bool
}

// Layout 描述模块在虚拟文件系统中的落点以及远端资源命名。
type Layout struct {
	InstallRoot      string
	ArchiveRoot      string
	SharedRootModule string
	ArchiveName      string
	ManifestName     string
	ArchiveFirst     bool
}

// DefaultLayout 返回与浏览器端运行时一致的默认布局。
func DefaultLayout() Layout {
	return Layout{
		InstallRoot:      "/lib/python3.9/site-packages",
		ArchiveRoot:      "/",
		SharedRootModule: "packages",
		ArchiveName:      "files.zip",
		ManifestName:     "files.json",
		ArchiveFirst:     true,
	}
}

// ModuleRoot 返回模块文件的目标根目录；共享根模块直接写入安装目录。
func (l Layout) ModuleRoot(module string) string {
	if l.SharedRootModule != "" && module == l.SharedRootModule {
		return l.InstallRoot
	}
	return path.Join(l.InstallRoot, module)
}

// ArchivePath 返回模块归档在虚拟文件系统中的位置。
func (l Layout) ArchivePath(module string) string {
	return path.Join(l.ArchiveRoot, module+".zip")
}

// MarkPolicy 决定哪些模块会被登记为已加载。
type MarkPolicy string

const (
	// MarkAll 登记所有配置的模块，包括缺失的可选模块。
	MarkAll MarkPolicy = "all"
	// MarkRetrieved 只登记实际取回的模块。
	MarkRetrieved MarkPolicy = "retrieved"
)
