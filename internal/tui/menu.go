package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/field-crm/models"
)

// menuModel lists the collections the user can browse.
type menuModel struct {
	items []models.CollectionDescriptor
	idx   int
}

func newMenuModel() menuModel {
	return menuModel{items: models.Collections()}
}

func (m menuModel) current() (models.CollectionDescriptor, bool) {
	if m.idx < 0 || m.idx >= len(m.items) {
		return models.CollectionDescriptor{}, false
	}
	return m.items[m.idx], true
}

func collectionKind(c models.CollectionDescriptor) string {
	switch {
	case c.Writable && c.Reference:
		return "данные"
	case c.Writable:
		return "вложения"
	default:
		return "справочник"
	}
}

func (m menuModel) View() string {
	var b strings.Builder

	nameColWidth := lipgloss.Width("Коллекция")
	for _, item := range m.items {
		if w := lipgloss.Width(item.Name); w > nameColWidth {
			nameColWidth = w
		}
	}
	nameColWidth += 2 // reserve space for selection marker

	b.WriteString(fmt.Sprintf("%-*s │ %s\n", nameColWidth, "Коллекция", "Тип"))
	b.WriteString(strings.Repeat("─", nameColWidth))
	b.WriteString("─┼─")
	b.WriteString(strings.Repeat("─", 12))
	b.WriteString("\n")

	for i, item := range m.items {
		cursor := " "
		if i == m.idx {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%-*s │ %s\n", nameColWidth, cursor+" "+item.Name, collectionKind(item)))
	}

	return renderPage("КОЛЛЕКЦИИ", strings.TrimRight(b.String(), "\n"),
		"enter: открыть │ s: синхр. │ p: очередь │ v: версия │ q: выход")
}
