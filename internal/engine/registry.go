package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var globalRegistry = newRegistry()

type registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

func newRegistry() *registry {
	return &registry{drivers: make(map[string]Driver)}
}

// Register 将驱动加入全局注册表，重复键会返回错误。
func Register(d Driver) error {
	return globalRegistry.register(d)
}

// MustRegister 在注册失败时 panic，适合驱动 init() 中调用。
func MustRegister(d Driver) {
	if err := Register(d); err != nil {
		panic(err)
	}
}

// Resolve 返回指定键的驱动。
func Resolve(key string) (Driver, bool) {
	return globalRegistry.resolve(key)
}

// List 返回按键排序的驱动列表。
func List() []Driver {
	return globalRegistry.list()
}

// Keys 返回所有已注册驱动的键值。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, d := range items {
		result[i] = d.Key
	}
	return result
}

func (r *registry) normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (r *registry) register(d Driver) error {
	key := r.normalizeKey(d.Key)
	if key == "" {
		return fmt.Errorf("driver key is required")
	}
	if d.New == nil {
		return fmt.Errorf("driver %s has no factory", key)
	}
	d.Key = key

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[key]; exists {
		return fmt.Errorf("driver %s already registered", key)
	}
	r.drivers[key] = d
	return nil
}

func (r *registry) resolve(key string) (Driver, bool) {
	if key == "" {
		return Driver{}, false
	}
	normalized := r.normalizeKey(key)

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[normalized]
	return d, ok
}

func (r *registry) list() []Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.drivers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.drivers))
	for key := range r.drivers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Driver, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.drivers[key])
	}
	return result
}
