// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type config struct {
	LogLevel string `yaml:"logLevel"`
	RecentDB string `yaml:"recentDb"`
}

// loadConfig reads the YAML config at path. A missing file yields the defaults; a
// malformed one is an error.
func loadConfig(path string) (config, error) {
	cfg := config{
		LogLevel: "info",
		RecentDB: filepath.Join(os.TempDir(), "dcmedit-recent.db"),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %v: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %v: %v", path, err)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RecentDB == "" {
		cfg.RecentDB = filepath.Join(os.TempDir(), "dcmedit-recent.db")
	}
	return cfg, nil
}
