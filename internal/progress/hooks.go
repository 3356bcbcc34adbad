package progress

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// LogHook 以 debug 级别记录每次进度变化。
type LogHook struct {
	Logger *logrus.Logger
}

func (h LogHook) OnProgress(s Snapshot) {
	if h.Logger == nil {
		return
	}
	h.Logger.WithFields(logrus.Fields{
		"action":    "progress",
		"total":     s.Total,
		"completed": s.Completed,
		"label":     s.Label,
	}).Debug("fetch_progress")
}

func (h LogHook) OnFinished(s Snapshot) {
	if h.Logger == nil {
		return
	}
	h.Logger.WithFields(logrus.Fields{
		"action":    "progress",
		"total":     s.Total,
		"completed": s.Completed,
	}).Info("bootstrap_finished")
}

var (
	counterStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	doneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// TerminalHook 在单行内刷新进度，适合交互式终端。
type TerminalHook struct {
	Out io.Writer
}

func (h TerminalHook) OnProgress(s Snapshot) {
	if h.Out == nil || s.Total == 0 {
		return
	}
	counter := counterStyle.Render(fmt.Sprintf("[%d/%d]", s.Completed, s.Total))
	fmt.Fprintf(h.Out, "\r\033[K%s %s", counter, labelStyle.Render(s.Label))
}

func (h TerminalHook) OnFinished(s Snapshot) {
	if h.Out == nil {
		return
	}
	fmt.Fprintf(h.Out, "\r\033[K%s %d/%d\n", doneStyle.Render("✓ ready"), s.Completed, s.Total)
}
