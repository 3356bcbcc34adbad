// Package progress tracks how many retrieval units a bootstrap run expects
// and has finished, and forwards every change to optional presentation hooks.
package progress

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Snapshot 是某一时刻的进度快照。
type Snapshot struct {
	Total     int64
	Completed int64
	Label     string
	Finished  bool
}

// Hook 接收进度变化。实现不得回调 State，否则会死锁。
type Hook interface {
	OnProgress(Snapshot)
}

// Finisher 是可选接口，接收引导完成信号。
type Finisher interface {
	OnFinished(Snapshot)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(Snapshot)

// OnProgress makes HookFunc satisfy Hook.
func (f HookFunc) OnProgress(s Snapshot) { f(s) }

// State 保存单调递增的计数器；通知在锁内串行发出，钩子看到的快照严格有序。
type State struct {
	mu       sync.Mutex
	total    int64
	done     int64
	label    string
	finished bool

	hooks  []Hook
	logger *logrus.Logger
}

// New 创建进度状态，nil 钩子会被忽略。
func New(logger *logrus.Logger, hooks ...Hook) *State {
	s := &State{logger: logger}
	for _, h := range hooks {
		if h != nil {
			s.hooks = append(s.hooks, h)
		}
	}
	return s
}

// Reset 在每次引导开始时清零。
func (s *State) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total, s.done, s.label, s.finished = 0, 0, "", false
	s.notifyLocked()
}

// AddExpected 增加期望完成的单元数。
func (s *State) AddExpected(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total += int64(n)
	s.notifyLocked()
}

// Complete 记录一个单元完成（无论成功与否），label 为最近完成的单元名。
func (s *State) Complete(label string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
	s.label = label
	s.notifyLocked()
}

// Finish 发出完成信号，仅 Finisher 钩子会收到。
func (s *State) Finish() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	snap := s.snapshotLocked()
	for _, h := range s.hooks {
		if f, ok := h.(Finisher); ok {
			s.safeCall(func() { f.OnFinished(snap) })
		}
	}
}

// Snapshot 返回当前进度。
func (s *State) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{Total: s.total, Completed: s.done, Label: s.label, Finished: s.finished}
}

func (s *State) notifyLocked() {
	if len(s.hooks) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, h := range s.hooks {
		s.safeCall(func() { h.OnProgress(snap) })
	}
}

// safeCall 隔离钩子 panic，展示层故障不影响抓取流程。
func (s *State) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"action": "progress_hook",
				"panic":  r,
			}).Warn("progress_hook_failed")
		}
	}()
	fn()
}
