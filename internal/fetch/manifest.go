package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseManifest 解析 JSON 字符串数组形式的文件清单，并校验每一项都是安全的相对路径。
func ParseManifest(body []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: body is not a JSON array", ErrMalformedManifest)
	}
	var files []string
	if err := json.Unmarshal(trimmed, &files); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	for i, f := range files {
		if err := ValidateRelativePath(f); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedManifest, i, err)
		}
	}
	return files, nil
}
