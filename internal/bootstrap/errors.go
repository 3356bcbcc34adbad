package bootstrap

import "fmt"

// 引导阶段名称，出现在 StageError 与日志的 stage 字段中。
const (
	StageRuntime    = "runtime"
	StagePackages   = "packages"
	StagePrelude    = "prelude"
	StageFetch      = "fetch"
	StageSynthesize = "synthesize"
	StageImports    = "imports"
	StageKickoff    = "kickoff"
)

// StageError 标记中止引导的阶段。
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("bootstrap stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
