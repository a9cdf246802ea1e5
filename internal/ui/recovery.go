package ui

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Runner restarts the dashboard after a panic, up to maxRestarts times.
type Runner struct {
	logger       *zap.Logger
	restartDelay time.Duration
	maxRestarts  int
	newModel     func() tea.Model
	opts         []tea.ProgramOption

	mu       sync.Mutex
	program  *tea.Program
	restarts int
}

// NewRunner creates a runner building a fresh model for every start.
func NewRunner(logger *zap.Logger, newModel func() tea.Model, opts ...tea.ProgramOption) *Runner {
	return &Runner{
		logger:       logger.Named("ui"),
		restartDelay: time.Second,
		maxRestarts:  3,
		newModel:     newModel,
		opts:         opts,
	}
}

// Run blocks until the user quits, ctx is done or the restart limit is hit.
func (r *Runner) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, r.Stop)
	defer stop()

	for {
		err := r.runOnce()
		if err == nil || ctx.Err() != nil {
			return nil
		}

		r.mu.Lock()
		r.restarts++
		restarts := r.restarts
		r.mu.Unlock()

		if restarts > r.maxRestarts {
			return fmt.Errorf("dashboard crashed %d times, giving up: %w", restarts, err)
		}
		r.logger.Error("Dashboard crashed, restarting",
			zap.Error(err),
			zap.Int("restart", restarts),
			zap.Duration("delay", r.restartDelay))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.restartDelay):
		}
	}
}

func (r *Runner) runOnce() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("dashboard panic: %v", rec)
			r.logger.Error("Dashboard panic recovered",
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	program := tea.NewProgram(NewSafeModel(r.newModel(), r.logger), r.opts...)
	r.mu.Lock()
	r.program = program
	r.mu.Unlock()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// Stop quits the running program.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Quit()
	}
}

func (r *Runner) Restarts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restarts
}

// SafeModel keeps a panicking Update or View from tearing down the terminal.
type SafeModel struct {
	model  tea.Model
	logger *zap.Logger
}

func NewSafeModel(model tea.Model, logger *zap.Logger) *SafeModel {
	return &SafeModel{model: model, logger: logger}
}

func (s *SafeModel) Init() (cmd tea.Cmd) {
	defer s.recoverCmd("Init", &cmd)
	return s.model.Init()
}

func (s *SafeModel) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	model = s
	defer s.recoverCmd("Update", &cmd)
	next, cmd := s.model.Update(msg)
	s.model = next
	return s, cmd
}

func (s *SafeModel) View() (view string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("View panic recovered",
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())))
			view = "dashboard error: view crashed, press q to exit"
		}
	}()
	return s.model.View()
}

func (s *SafeModel) recoverCmd(method string, cmd *tea.Cmd) {
	if rec := recover(); rec != nil {
		s.logger.Error("Dashboard method panic recovered",
			zap.String("method", method),
			zap.Any("panic", rec),
			zap.String("stack", string(debug.Stack())))
		*cmd = nil
	}
}
