package fetch

import "sync"

// SearchPathRegistry 按登记顺序保存归档句柄，只追加不删除，重复句柄会被忽略。
type SearchPathRegistry struct {
	mu      sync.Mutex
	handles []string
	seen    map[string]struct{}
}

// NewSearchPathRegistry 创建空的登记表，每次运行使用一个新实例。
func NewSearchPathRegistry() *SearchPathRegistry {
	return &SearchPathRegistry{seen: make(map[string]struct{})}
}

// Register 追加一个归档句柄。
func (r *SearchPathRegistry) Register(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[handle]; ok {
		return
	}
	r.seen[handle] = struct{}{}
	r.handles = append(r.handles, handle)
}

// Handles 返回按登记顺序排列的句柄副本。
func (r *SearchPathRegistry) Handles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.handles...)
}
