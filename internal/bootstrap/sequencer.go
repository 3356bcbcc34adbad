package bootstrap

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/viur-framework/flare/internal/engine"
	"github.com/viur-framework/flare/internal/fetch"
	"github.com/viur-framework/flare/internal/logging"
	"github.com/viur-framework/flare/internal/progress"
)

// Options 描述 Sequencer 的依赖。
type Options struct {
	// Driver 负责在 runtime 阶段构建运行时。
	Driver        engine.Driver
	EngineOptions engine.Options
	Orchestrator  *fetch.Orchestrator
	Progress      *progress.State
	Logger        *logrus.Logger
}

// Report 汇总一次引导的结果。
type Report struct {
	RunID    string
	Runtime  engine.Runtime
	Outcomes []fetch.Outcome
	Code     string
	Output   string
	Elapsed  time.Duration
}

// Sequencer 串行执行引导阶段。
type Sequencer struct {
	opts   Options
	logger *logrus.Logger
}

// New 校验依赖并创建 Sequencer。
func New(opts Options) (*Sequencer, error) {
	if opts.Driver.New == nil {
		return nil, errors.New("engine driver is required")
	}
	if opts.Orchestrator == nil {
		return nil, errors.New("fetch orchestrator is required")
	}
	logger := logging.OrDiscard(opts.Logger)
	if opts.EngineOptions.Logger == nil {
		opts.EngineOptions.Logger = logger
	}
	return &Sequencer{opts: opts, logger: logger}, nil
}

// Bootstrap 依次执行各阶段；任一阶段失败即返回 *StageError，后续阶段不再执行。
// 失败时仍返回已填充的 Report，便于调用方输出部分结果。
func (s *Sequencer) Bootstrap(ctx context.Context, plan Plan) (*Report, error) {
	started := time.Now()
	report := &Report{RunID: uuid.NewString()}
	s.opts.Progress.Reset()

	stageLog := func(stage string) *logrus.Entry {
		return s.logger.WithFields(logging.RunFields(report.RunID, stage))
	}
	fail := func(stage string, err error) (*Report, error) {
		report.Elapsed = time.Since(started)
		stageLog(stage).WithError(err).Error("bootstrap_failed")
		return report, &StageError{Stage: stage, Err: err}
	}

	stageLog(StageRuntime).WithField("driver", s.opts.Driver.Key).Info("bootstrap_started")
	rt, err := s.opts.Driver.New(ctx, s.opts.EngineOptions)
	if err != nil {
		return fail(StageRuntime, err)
	}
	report.Runtime = rt

	if len(plan.Packages) > 0 {
		if err := rt.LoadPackages(ctx, plan.Packages); err != nil {
			return fail(StagePackages, err)
		}
		stageLog(StagePackages).WithField("packages", plan.Packages).Info("packages_loaded")
	}

	if strings.TrimSpace(plan.Prelude) != "" {
		stageLog(StagePrelude).Warn("prelude_deprecated")
		if err := rt.LoadPackagesFromImports(ctx, plan.Prelude); err != nil {
			return fail(StagePrelude, err)
		}
		if _, err := rt.RunAsync(ctx, plan.Prelude); err != nil {
			return fail(StagePrelude, err)
		}
	}

	outcomes, err := s.opts.Orchestrator.Run(ctx, rt, plan.Modules)
	report.Outcomes = outcomes
	if err != nil {
		return fail(StageFetch, err)
	}

	report.Code = SynthesizeKickoff(plan.Modules, plan.Guard, plan.Kickoff)
	stageLog(StageSynthesize).WithField("modules", len(plan.Modules)).Debug("kickoff_synthesized")

	if err := rt.LoadPackagesFromImports(ctx, report.Code); err != nil {
		return fail(StageImports, err)
	}

	output, err := rt.RunAsync(ctx, report.Code)
	report.Output = output
	if err != nil {
		return fail(StageKickoff, err)
	}

	s.opts.Progress.Finish()
	report.Elapsed = time.Since(started)
	stageLog(StageKickoff).WithFields(logrus.Fields{
		"modules":    len(plan.Modules),
		"elapsed_ms": report.Elapsed.Milliseconds(),
	}).Info("bootstrap_completed")
	return report, nil
}
