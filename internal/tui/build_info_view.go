// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strings"

	"github.com/MKhiriev/field-crm/models"
)

func renderBuildInfoWindow(info models.AppBuildInfo) string {
	var b strings.Builder

	b.WriteString("Название приложения: Field CRM\n")
	b.WriteString("Версия: ")
	b.WriteString(info.Version())
	b.WriteString("\n")
	b.WriteString("Дата: ")
	b.WriteString(info.Date())
	b.WriteString("\n")
	b.WriteString("Коммит: ")
	b.WriteString(info.Commit())

	return renderPage("ИНФОРМАЦИЯ О ПРОГРАММЕ", b.String(), "esc: назад")
}
