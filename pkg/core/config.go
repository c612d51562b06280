/*******************************************************************************
*
* Copyright 2022 SAP SE
*
* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You should have received a copy of the License along with this
* program. If not, you may obtain a copy of the License at
*
*     http://www.apache.org/licenses/LICENSE-2.0
*
* Unless required by applicable law or agreed to in writing, software
* distributed under the License is distributed on an "AS IS" BASIS,
* WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
* See the License for the specific language governing permissions and
* limitations under the License.
*
*******************************************************************************/

package core

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/sapcc/go-bits/logg"
	yaml "gopkg.in/yaml.v2"

	"github.com/sapcc/manila-ui/pkg/metadata"
)

const (
	// DefaultMicroversion is the Manila API microversion that we request unless
	// configured otherwise. 2.56 is the first version where neither share groups
	// nor share replicas are experimental.
	DefaultMicroversion = "2.56"
	// DefaultProjectCacheTTL is how long the project name lookup table is kept
	// before it is refreshed from Keystone.
	DefaultProjectCacheTTL = 20 * time.Second
)

var microversionRx = regexp.MustCompile(`^2\.([0-9]+)$`)

// Minimum microversions (minor part of "2.x") for the API calls we make.
// Older versions either lack the endpoint or require the experimental header.
const (
	minMicroversionQuotaDetail   = 25
	minMicroversionShareGroups   = 55
	minMicroversionShareReplicas = 56
)

// Configuration contains all the data from the configuration file.
type Configuration struct {
	CatalogURL   string                    `yaml:"catalog_url"`
	Manila       ManilaConfiguration       `yaml:"manila"`
	Display      DisplayConfiguration      `yaml:"display"`
	ProjectCache ProjectCacheConfiguration `yaml:"project_cache"`
}

// ManilaConfiguration describes how the Manila API is accessed.
type ManilaConfiguration struct {
	Microversion string `yaml:"microversion"`
	//Features that are not enabled are not listed when computing usage. This
	//mirrors the Manila deployment: when share groups are disabled there, the
	//limits payload does not contain the share group counters either.
	Features struct {
		ShareGroups   bool `yaml:"share_groups"`
		ShareReplicas bool `yaml:"share_replicas"`
	} `yaml:"features"`
}

// DisplayConfiguration contains options for rendering metadata in tables.
type DisplayConfiguration struct {
	VisibleItems int `yaml:"visible_items"`
	TextWidth    int `yaml:"text_width"`
}

// ProjectCacheConfiguration contains options for the project name cache.
type ProjectCacheConfiguration struct {
	TTLSeconds uint64 `yaml:"ttl_seconds"`
}

// TTL returns the configured TTL as a time.Duration.
func (c ProjectCacheConfiguration) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// NewConfiguration reads and validates the given configuration file.
// Errors are logged and will result in program termination, causing the
// function to not return.
func NewConfiguration(path string) Configuration {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		logg.Fatal("read configuration file: %s", err.Error())
	}
	config, ok := parseConfiguration(configBytes)
	if !ok {
		os.Exit(1)
	}
	return config
}

func parseConfiguration(configBytes []byte) (Configuration, bool) {
	var config Configuration
	err := yaml.UnmarshalStrict(configBytes, &config)
	if err != nil {
		logg.Error("parse configuration: %s", err.Error())
		return Configuration{}, false
	}

	config.applyDefaults()
	if !config.validate() {
		return Configuration{}, false
	}
	return config, true
}

func (config *Configuration) applyDefaults() {
	if config.Manila.Microversion == "" {
		config.Manila.Microversion = DefaultMicroversion
	}
	if config.Display.VisibleItems == 0 {
		config.Display.VisibleItems = metadata.DefaultVisibleItems
	}
	if config.Display.TextWidth == 0 {
		config.Display.TextWidth = metadata.DefaultTextWidth
	}
	if config.ProjectCache.TTLSeconds == 0 {
		config.ProjectCache.TTLSeconds = uint64(DefaultProjectCacheTTL / time.Second)
	}
}

func (config Configuration) validate() (success bool) {
	//do not fail on first error; keep going and report all errors at once
	success = true //until proven otherwise

	if config.CatalogURL == "" {
		logg.Error("missing catalog_url configuration value")
		success = false
	}
	match := microversionRx.FindStringSubmatch(config.Manila.Microversion)
	if match == nil {
		logg.Error("manila.microversion must look like \"2.<minor>\", but is %q", config.Manila.Microversion)
		success = false
	} else {
		minor, err := strconv.Atoi(match[1])
		if err != nil {
			logg.Error("manila.microversion %q is out of range", config.Manila.Microversion)
			success = false
		}
		checkMin := func(minimum int, feature string) {
			if err == nil && minor < minimum {
				logg.Error("%s requires manila.microversion 2.%d or newer, but is %q", feature, minimum, config.Manila.Microversion)
				success = false
			}
		}
		checkMin(minMicroversionQuotaDetail, "quota detail lookup")
		if config.Manila.Features.ShareGroups {
			checkMin(minMicroversionShareGroups, "features.share_groups")
		}
		if config.Manila.Features.ShareReplicas {
			checkMin(minMicroversionShareReplicas, "features.share_replicas")
		}
	}
	if config.Display.VisibleItems < 0 {
		logg.Error("display.visible_items may not be negative")
		success = false
	}
	if config.Display.TextWidth < 0 {
		logg.Error("display.text_width may not be negative")
		success = false
	}

	return success
}
