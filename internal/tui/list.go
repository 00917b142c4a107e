package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/field-crm/models"
)

const listTitleWidth = 48

type listModel struct {
	collection models.CollectionDescriptor
	items      []models.Record
	idx        int
	loading    bool
	stale      bool
	status     string
}

func (m listModel) current() (models.Record, bool) {
	if len(m.items) == 0 || m.idx < 0 || m.idx >= len(m.items) {
		return models.Record{}, false
	}
	return m.items[m.idx], true
}

func (m *listModel) setItems(items []models.Record, stale bool) {
	m.loading = false
	m.items = items
	m.stale = stale
	if m.idx >= len(m.items) {
		m.idx = len(m.items) - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

func (m listModel) View() string {
	var b strings.Builder

	switch {
	case m.loading:
		b.WriteString("Загрузка...\n")
	case len(m.items) == 0:
		b.WriteString("Нет записей\n")
	default:
		for i, item := range m.items {
			cursor := "  "
			if i == m.idx {
				cursor = "> "
			}
			line := fmt.Sprintf("%s%6d  %s", cursor, item.ID, fitText(recordTitle(item), listTitleWidth))
			if item.Pending() {
				line += " " + pendingStyle.Render("[не отправлено]")
			}
			b.WriteString(line + "\n")
		}
	}

	if m.stale {
		b.WriteString("\n" + pendingStyle.Render("Данные из локального кэша, сервер недоступен") + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	hotKeys := "enter: открыть │ r: обновить │ s: синхр. │ esc: назад"
	if m.collection.Writable {
		hotKeys = "n: новая │ " + hotKeys
	}
	return renderPage(strings.ToUpper(m.collection.Name), strings.TrimRight(b.String(), "\n"), hotKeys)
}
