// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"

	"github.com/MKhiriev/field-crm/internal/adapter"
	"github.com/MKhiriev/field-crm/internal/service"
	"github.com/MKhiriev/field-crm/internal/store"
	"github.com/MKhiriev/field-crm/internal/validators"
)

var ErrNoServices = errors.New("client services are not initialized")

// humanizeError turns service errors into the short message shown in the
// error overlay.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	var remote *adapter.RemoteError
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		return "Синхронизация уже выполняется"
	case errors.Is(err, validators.ErrValidation):
		return "Проверьте данные: " + err.Error()
	case errors.Is(err, adapter.ErrNetwork):
		return "Отсутствует сеть или сервер недоступен"
	case errors.As(err, &remote):
		return "Сервер отклонил запрос: " + remote.Message
	case errors.Is(err, store.ErrRecordNotFound):
		return "Запись не найдена в локальном хранилище"
	case errors.Is(err, store.ErrStorageQuotaExceeded):
		return "Недостаточно места для локального хранилища"
	case errors.Is(err, store.ErrStorage):
		return "Ошибка локального хранилища"
	}

	return err.Error()
}
