package bootstrap

import (
	"fmt"
	"strings"

	"github.com/viur-framework/flare/internal/fetch"
)

// GuardStyle 决定可选模块 import 的守卫写法。
type GuardStyle string

const (
	// GuardTry 用 try/except Exception 吞掉可选模块的导入错误。
	GuardTry GuardStyle = "try"
	// GuardFindSpec 仅在 importlib 能找到模块时才导入。
	GuardFindSpec GuardStyle = "find_spec"
)

// ParseGuardStyle 解析配置值，空值回退到 try。
func ParseGuardStyle(raw string) (GuardStyle, error) {
	switch GuardStyle(strings.TrimSpace(raw)) {
	case "", GuardTry:
		return GuardTry, nil
	case GuardFindSpec:
		return GuardFindSpec, nil
	}
	return "", fmt.Errorf("unknown guard style %q", raw)
}

// SynthesizeKickoff 依次把每个模块的 import 前置到 kickoff 之前，因此最终顺序与配置顺序相反。
// 可选模块加守卫；find_spec 风格需要的 importlib.util 放在最前面。
func SynthesizeKickoff(modules []fetch.Module, style GuardStyle, kickoff string) string {
	var b strings.Builder
	needUtil := false
	for _, m := range modules {
		if m.Optional && style == GuardFindSpec {
			needUtil = true
			break
		}
	}
	if needUtil {
		b.WriteString("import importlib.util\n")
	}
	for i := len(modules) - 1; i >= 0; i-- {
		b.WriteString(importStatement(modules[i], style))
	}
	if kickoff != "" {
		b.WriteString(kickoff)
		if !strings.HasSuffix(kickoff, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func importStatement(m fetch.Module, style GuardStyle) string {
	if !m.Optional {
		return fmt.Sprintf("import %s\n", m.Name)
	}
	if style == GuardFindSpec {
		return fmt.Sprintf("if importlib.util.find_spec(%q) is not None:\n    import %s\n", m.Name, m.Name)
	}
	return fmt.Sprintf("try:\n    import %s\nexcept Exception:\n    pass\n", m.Name)
}
