package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/field-crm/models"
)

type detailModel struct {
	record   models.Record
	writable bool
	status   string
}

// prettyJSON indents a record body; invalid JSON is shown as is.
func prettyJSON(data json.RawMessage) string {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}

func (m detailModel) View() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  [%s #%d]\n", recordTitle(m.record), m.record.Collection, m.record.ID))
	if m.record.Pending() {
		b.WriteString(pendingStyle.Render("Создана офлайн, ожидает отправки на сервер") + "\n")
	}
	if !m.record.UpdatedAt.IsZero() {
		b.WriteString("Обновлено: " + m.record.UpdatedAt.Local().Format("02.01.2006 15:04") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(prettyJSON(m.record.Data))

	if m.status != "" {
		b.WriteString("\n\n" + m.status)
	}

	hotKeys := "c: копир. JSON │ esc: назад"
	if m.writable {
		hotKeys = "e: редакт. │ d: удалить │ " + hotKeys
	}
	return renderPage("ЗАПИСЬ", b.String(), hotKeys)
}
