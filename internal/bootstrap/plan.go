package bootstrap

import (
	"github.com/viur-framework/flare/internal/config"
	"github.com/viur-framework/flare/internal/fetch"
)

// Plan 是一次引导所需的全部输入，与配置文件解耦以便测试直接构造。
type Plan struct {
	Modules  []fetch.Module
	Packages []string
	Prelude  string
	Kickoff  string
	Guard    GuardStyle
}

// PlanFromConfig 解析每个模块的来源并组装计划，模块顺序与配置一致。
func PlanFromConfig(cfg *config.Config) (Plan, error) {
	guard, err := ParseGuardStyle(cfg.Global.GuardStyle)
	if err != nil {
		return Plan{}, err
	}
	modules := make([]fetch.Module, 0, len(cfg.Modules))
	for _, m := range cfg.Modules {
		source, err := cfg.ResolveModuleSource(m)
		if err != nil {
			return Plan{}, err
		}
		modules = append(modules, fetch.Module{
			Name:     m.Name,
			Source:   source,
			Optional: m.Optional,
		})
	}
	return Plan{
		Modules:  modules,
		Packages: append([]string(nil), cfg.Bootstrap.Packages...),
		Prelude:  cfg.Bootstrap.Prelude,
		Kickoff:  cfg.Bootstrap.Kickoff,
		Guard:    guard,
	}, nil
}
