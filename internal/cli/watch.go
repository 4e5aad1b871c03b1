package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/service"
)

// waitForTask polls until the task is COMPLETED or FAILED. onUpdate sees
// every snapshot whose progress or step changed.
func waitForTask(ctx context.Context, tasks service.TaskService, taskID, owner string, interval time.Duration, onUpdate func(*domain.ProgressTask)) (*domain.ProgressTask, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastProgress, lastStep := -1, ""
	for {
		task, err := tasks.Get(ctx, taskID, owner)
		if err != nil {
			return nil, err
		}
		if onUpdate != nil && (task.Progress != lastProgress || task.CurrentStep != lastStep || task.Status.IsTerminal()) {
			onUpdate(task)
			lastProgress, lastStep = task.Progress, task.CurrentStep
		}
		if task.Status.IsTerminal() {
			return task, nil
		}
		select {
		case <-ctx.Done():
			return task, ctx.Err()
		case <-ticker.C:
		}
	}
}

type taskSnapshotMsg struct{ task *domain.ProgressTask }

type taskErrMsg struct{ err error }

// watchModel renders a live progress bar for one plan build task.
type watchModel struct {
	ctx      context.Context
	tasks    service.TaskService
	taskID   string
	owner    string
	interval time.Duration

	bar  progress.Model
	task *domain.ProgressTask
	err  error
	quit bool
}

func newWatchModel(ctx context.Context, tasks service.TaskService, taskID, owner string, interval time.Duration) watchModel {
	return watchModel{
		ctx:      ctx,
		tasks:    tasks,
		taskID:   taskID,
		owner:    owner,
		interval: interval,
		bar: progress.New(
			progress.WithGradient(string(formatter.ColorHeader), string(formatter.ColorGreen)),
			progress.WithWidth(40),
		),
	}
}

func (m watchModel) poll(delay time.Duration) tea.Cmd {
	fetch := func() tea.Msg {
		task, err := m.tasks.Get(m.ctx, m.taskID, m.owner)
		if err != nil {
			return taskErrMsg{err: err}
		}
		return taskSnapshotMsg{task: task}
	}
	if delay == 0 {
		return fetch
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return fetch() })
}

func (m watchModel) Init() tea.Cmd {
	return m.poll(0)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quit = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-10, 10), 60)
	case taskSnapshotMsg:
		m.task = msg.task
		if msg.task.Status.IsTerminal() {
			return m, tea.Quit
		}
		return m, m.poll(m.interval)
	case taskErrMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.err != nil {
		return formatter.StyleRed.Render("error: "+m.err.Error()) + "\n"
	}
	if m.task == nil {
		return formatter.Dim("Waiting for task "+m.taskID+"...") + "\n"
	}
	var b strings.Builder
	b.WriteString("  " + m.bar.ViewAs(float64(m.task.Progress)/100) + "\n")
	b.WriteString("  " + formatter.TaskStatusPill(m.task.Status))
	if m.task.CurrentStep != "" {
		b.WriteString("  " + formatter.Dim(m.task.CurrentStep))
	}
	b.WriteString("\n  " + m.task.Message + "\n")
	if !m.task.Status.IsTerminal() {
		b.WriteString(formatter.Dim("  q to stop watching (the build keeps running)") + "\n")
	}
	return b.String()
}

// watchTask runs the live progress view and returns the last snapshot.
func watchTask(ctx context.Context, tasks service.TaskService, taskID, owner string, interval time.Duration, in io.Reader, out io.Writer) (*domain.ProgressTask, error) {
	p := tea.NewProgram(
		newWatchModel(ctx, tasks, taskID, owner, interval),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	m := final.(watchModel)
	if m.err != nil {
		return nil, m.err
	}
	if m.quit && (m.task == nil || !m.task.Status.IsTerminal()) {
		return waitForTask(ctx, tasks, taskID, owner, interval, nil)
	}
	return m.task, nil
}
