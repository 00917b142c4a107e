// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the field CRM client process: local store, remote
// API adapter, connectivity monitor, services, background workers and local
// listeners, built from one [config.ClientConfig].
package client
