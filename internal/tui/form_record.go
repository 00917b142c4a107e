package tui

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"

	"github.com/MKhiriev/field-crm/models"
)

var errInvalidJSON = errors.New("введите корректный JSON-объект")

// formRecordModel edits a record body as JSON. editing is false for new
// records.
type formRecordModel struct {
	collection models.CollectionDescriptor
	recordID   int64
	editing    bool
	area       textarea.Model
	submitting bool
}

func newFormRecordModel(collection models.CollectionDescriptor, record *models.Record) formRecordModel {
	area := textarea.New()
	area.ShowLineNumbers = false
	area.CharLimit = 0
	area.SetWidth(64)
	area.SetHeight(12)

	m := formRecordModel{collection: collection, area: area}
	if record != nil {
		m.editing = true
		m.recordID = record.ID
		m.area.SetValue(editableBody(*record))
	} else {
		m.area.SetValue(blankBody(collection))
	}
	m.area.Focus()
	return m
}

// blankBody prefills the required fields of a new record.
func blankBody(c models.CollectionDescriptor) string {
	fields := make(map[string]any, len(c.Required))
	for _, name := range c.Required {
		if strings.HasSuffix(name, "_id") {
			fields[name] = 0
		} else {
			fields[name] = ""
		}
	}
	body, _ := json.MarshalIndent(fields, "", "  ")
	return string(body)
}

// editableBody drops the id: it is addressed by the path, not the payload.
func editableBody(r models.Record) string {
	fields, err := r.Fields()
	if err != nil {
		return prettyJSON(r.Data)
	}
	delete(fields, "id")
	body, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return prettyJSON(r.Data)
	}
	return string(body)
}

func (m formRecordModel) payload() (json.RawMessage, error) {
	raw := strings.TrimSpace(m.area.Value())
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return nil, errInvalidJSON
	}
	return json.RawMessage(raw), nil
}

func (m formRecordModel) View() string {
	title := "НОВАЯ ЗАПИСЬ: " + m.collection.Name
	if m.editing {
		title = "РЕДАКТИРОВАНИЕ: " + m.collection.Name
	}

	body := m.area.View()
	if m.submitting {
		body += "\n\nСохранение..."
	}
	return renderPage(title, body, "ctrl+s: сохранить │ esc: отмена")
}
