package ui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockModel struct {
	panicOnUpdate bool
	panicOnView   bool
	updates       int
	quitOnInit    bool
}

func (m *mockModel) Init() tea.Cmd {
	if m.quitOnInit {
		return tea.Quit
	}
	return nil
}

func (m *mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.updates++
	if m.panicOnUpdate {
		panic("update panic test")
	}
	return m, tea.Quit
}

func (m *mockModel) View() string {
	if m.panicOnView {
		panic("view panic test")
	}
	return "Test UI"
}

func TestSafeModelRecoversUpdate(t *testing.T) {
	inner := &mockModel{panicOnUpdate: true}
	safe := NewSafeModel(inner, zap.NewNop())

	model, cmd := safe.Update(nil)
	assert.Same(t, safe, model)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, inner.updates)

	inner.panicOnUpdate = false
	_, cmd = safe.Update(nil)
	assert.NotNil(t, cmd)
}

func TestSafeModelRecoversView(t *testing.T) {
	inner := &mockModel{}
	safe := NewSafeModel(inner, zap.NewNop())
	assert.Equal(t, "Test UI", safe.View())

	inner.panicOnView = true
	assert.Contains(t, safe.View(), "view crashed")
}

func TestRunnerExitsNormally(t *testing.T) {
	r := NewRunner(zap.NewNop(), func() tea.Model {
		return &mockModel{quitOnInit: true}
	}, tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, r.Run(ctx))
	assert.Zero(t, r.Restarts())
}

func TestRunnerStopsWithContext(t *testing.T) {
	r := NewRunner(zap.NewNop(), func() tea.Model {
		return &mockModel{}
	}, tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}
