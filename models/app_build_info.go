// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
)

const buildInfoUnknown = "N/A"

// AppBuildInfo is the build metadata injected into the fieldcrm binary with
// -ldflags. Empty values are reported as "N/A".
type AppBuildInfo struct {
	version string
	date    string
	commit  string
}

func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{version: version, date: date, commit: commit}
}

func (a AppBuildInfo) Version() string { return orUnknown(a.version) }
func (a AppBuildInfo) Date() string    { return orUnknown(a.date) }
func (a AppBuildInfo) Commit() string  { return orUnknown(a.commit) }

// String is the multi-line form printed by the version command.
func (a AppBuildInfo) String() string {
	return fmt.Sprintf("Build version: %s\nBuild date: %s\nBuild commit: %s", a.Version(), a.Date(), a.Commit())
}

// MarshalJSON is used by the local API version endpoint.
func (a AppBuildInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Version string `json:"version"`
		Date    string `json:"date"`
		Commit  string `json:"commit"`
	}{a.Version(), a.Date(), a.Commit()})
}

func orUnknown(s string) string {
	if s == "" {
		return buildInfoUnknown
	}
	return s
}
