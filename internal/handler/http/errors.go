// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Request decoding errors. All of them are answered with 400.
var (
	ErrInvalidJSON     = errors.New("invalid JSON was passed")
	ErrInvalidRecordID = errors.New("record id must be an integer")
	ErrNoPhotoProvided = errors.New("no photo was provided")
	ErrPhotoTooLarge   = errors.New("photo is too large")
	ErrUnknownMode     = errors.New(`mode must be "online", "offline" or "auto"`)
)
