package engine

import (
	"regexp"
	"strings"
)

var (
	importLine = regexp.MustCompile(`^\s*import\s+(.+)$`)
	fromLine   = regexp.MustCompile(`^\s*from\s+([A-Za-z_][\w.]*)\s+import\b`)
)

// FindImports 提取代码中引用的顶层模块名，保持首次出现的顺序。
// 相对导入（from . import x）会被忽略。
func FindImports(code string) []string {
	seen := map[string]struct{}{}
	var result []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if i := strings.Index(name, "."); i >= 0 {
			name = name[:i]
		}
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}

	for _, line := range strings.Split(code, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		if m := fromLine.FindStringSubmatch(line); m != nil {
			add(m[1])
			continue
		}
		if m := importLine.FindStringSubmatch(line); m != nil {
			for _, part := range strings.Split(m[1], ",") {
				fields := strings.Fields(part)
				if len(fields) > 0 {
					add(fields[0])
				}
			}
		}
	}
	return result
}
