package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RunFields 标识一次引导运行，所有阶段日志共享同一个 run_id。
func RunFields(runID, stage string) logrus.Fields {
	return logrus.Fields{
		"action": "bootstrap",
		"run_id": runID,
		"stage":  stage,
	}
}

// ModuleFields 提供模块名、来源与可选标记，供抓取日志复用。
func ModuleFields(module, source string, optional bool) logrus.Fields {
	return logrus.Fields{
		"action":   "fetch",
		"module":   module,
		"source":   source,
		"optional": optional,
	}
}
