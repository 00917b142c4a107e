package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/field-crm/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

// titleFields are tried in order to label a record in lists.
var titleFields = []string{"name", "title", "date", "caption", "file_name"}

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		lines := strings.Split(data, "\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(hotKeys))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("  ctrl+c: выход"))

	return b.String()
}

// renderStatusLine is the header shared by every screen.
func renderStatusLine(status models.StatusResponse, sync syncModel) string {
	conn := offlineStyle.Render("● офлайн")
	if status.Connectivity.Connected {
		conn = onlineStyle.Render("● онлайн")
	}

	line := fmt.Sprintf("%s  │ в очереди: %d", conn, status.PendingWrites)
	if sync.running || status.Sync == models.SyncStatusSyncing {
		line += "  │ " + sync.View()
	} else if status.LastSync != nil {
		line += fmt.Sprintf("  │ синхр. %s: +%d / ошибок %d",
			status.LastSync.EndedAt.Local().Format("15:04"), status.LastSync.Replayed, status.LastSync.Failed)
	}
	if !status.StorageHealthy {
		line += "  │ " + errorStyle.Render("хранилище недоступно")
	}
	return line
}

func recordTitle(r models.Record) string {
	fields, err := r.Fields()
	if err != nil {
		return fmt.Sprintf("#%d", r.ID)
	}
	for _, name := range titleFields {
		if v, ok := fields[name].(string); ok && v != "" {
			return v
		}
	}
	return fmt.Sprintf("#%d", r.ID)
}

func fitText(v string, max int) string {
	runes := []rune(v)
	if max <= 0 || len(runes) <= max {
		return v
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
