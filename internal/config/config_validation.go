// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// validate checks the merged [StructuredConfig]. Source-level checks only;
// runtime requirements are enforced by [ClientConfig.validate].
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}
	base := cfg.Adapter.HTTPAddress
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: base URL %q", ErrInvalidAdapterConfigs, cfg.Adapter.HTTPAddress)
	}

	w := cfg.Workers
	if w.ProbeInterval <= 0 || w.RetryInterval <= 0 || w.RetryBase <= 0 || w.RetryMax < w.RetryBase || w.InitialCheckDelay < 0 {
		return ErrInvalidWorkerConfigs
	}

	for _, addr := range []string{cfg.Server.HTTPAddress, cfg.Server.GRPCAddress} {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidServerConfigs, err)
		}
	}

	return nil
}
