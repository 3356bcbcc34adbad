// Package engine 抽象承载模块代码的脚本运行时，并提供驱动注册入口。
//
// 驱动作者需要：
//   1. 在 internal/engine/<driver>/ 目录下实现 Runtime 接口；
//   2. 在 init() 中调用 MustRegister 注册 Driver；
//   3. 在 internal/config/runtimes.go 中以空白导入引入该驱动，使配置校验可见。
package engine
