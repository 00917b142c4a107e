package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/models"
)

var ErrUserQuit = errors.New("вышел из программы")

// eventBuffer is the notifier buffer of the terminal UI subscription.
const eventBuffer = 16

type TUI struct {
	services  *service.ClientServices
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(services *service.ClientServices, buildInfo models.AppBuildInfo, logger *logger.Logger) (*TUI, error) {
	if services == nil {
		return nil, ErrNoServices
	}
	return &TUI{services: services, buildInfo: buildInfo, logger: logger}, nil
}

// Run blocks until the user quits or ctx is done. Background workers are
// owned by the caller.
func (t *TUI) Run(ctx context.Context) error {
	events, cancel := t.services.Notifier.Subscribe(eventBuffer)
	defer cancel()

	model := newAppModel(ctx, t.services, events, t.buildInfo)
	finalModel, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		t.logger.Err(err).Str("func", "*TUI.Run").Msg("terminal ui stopped with error")
		return err
	}

	if result, ok := finalModel.(appModel); ok && result.err != nil && !errors.Is(result.err, ErrUserQuit) {
		return result.err
	}
	return nil
}
