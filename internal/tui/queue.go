package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/field-crm/models"
)

type queueModel struct {
	writes  []models.QueuedWrite
	idx     int
	loading bool
	status  string
}

func (m *queueModel) setWrites(writes []models.QueuedWrite) {
	m.loading = false
	m.writes = writes
	if m.idx >= len(m.writes) {
		m.idx = len(m.writes) - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

func describeWrite(w models.QueuedWrite) string {
	target := w.Collection
	if w.RecordID != 0 {
		target = fmt.Sprintf("%s #%d", w.Collection, w.RecordID)
	}
	return fmt.Sprintf("%-6s %s", w.Operation, target)
}

func (m queueModel) View() string {
	var b strings.Builder

	switch {
	case m.loading:
		b.WriteString("Загрузка...\n")
	case len(m.writes) == 0:
		b.WriteString("Очередь пуста, все изменения отправлены\n")
	default:
		for i, w := range m.writes {
			cursor := "  "
			if i == m.idx {
				cursor = "> "
			}
			line := fmt.Sprintf("%s%4d  %s", cursor, w.LocalID, describeWrite(w))
			if w.Attempts > 0 {
				line += fmt.Sprintf("  попыток: %d", w.Attempts)
			}
			b.WriteString(line + "\n")
			if i == m.idx && w.LastError != "" {
				b.WriteString("        " + pendingStyle.Render(fitText(w.LastError, 60)) + "\n")
			}
		}
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	return renderPage("ОЧЕРЕДЬ ИЗМЕНЕНИЙ", strings.TrimRight(b.String(), "\n"), "r: повторить сейчас │ esc: назад")
}
