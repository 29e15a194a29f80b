package main

import (
	"github.com/kelseyhightower/envconfig"
)

// daemonConfig is how one-shot commands (start/list/pause/...) locate a
// running `fdm serve` instance, read the way this lineage's CLI layer
// already reads environment-sourced configuration (see
// internal/config in the teacher repository), generalized to
// github.com/kelseyhightower/envconfig per SPEC_FULL.md §4.I.
type daemonConfig struct {
	Addr string `envconfig:"FDM_ADDR" default:"http://127.0.0.1:8383"`
	Dir  string `envconfig:"FDM_DIR"`
	Port int    `envconfig:"FDM_PORT" default:"8383"`
}

func loadDaemonConfig() (daemonConfig, error) {
	var cfg daemonConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return daemonConfig{}, err
	}
	return cfg, nil
}
