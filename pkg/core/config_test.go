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
	"path/filepath"
	"testing"
	"time"

	policy "github.com/databus23/goslo.policy"
	"github.com/sapcc/go-bits/assert"
)

func TestConfigurationDefaults(t *testing.T) {
	config, ok := parseConfiguration([]byte("catalog_url: https://manila-ui.example.com/\n"))
	if !ok {
		t.Fatal("expected configuration to be valid")
	}
	assert.DeepEqual(t, "microversion", config.Manila.Microversion, DefaultMicroversion)
	assert.DeepEqual(t, "visible_items", config.Display.VisibleItems, 4)
	assert.DeepEqual(t, "text_width", config.Display.TextWidth, 25)
	assert.DeepEqual(t, "project cache TTL", config.ProjectCache.TTL(), 20*time.Second)
	assert.DeepEqual(t, "share groups", config.Manila.Features.ShareGroups, false)
}

func TestConfigurationFull(t *testing.T) {
	config, ok := parseConfiguration([]byte(`
catalog_url: https://manila-ui.example.com/
manila:
  microversion: "2.61"
  features:
    share_groups: true
    share_replicas: true
display:
  visible_items: 2
  text_width: 40
project_cache:
  ttl_seconds: 60
`))
	if !ok {
		t.Fatal("expected configuration to be valid")
	}
	assert.DeepEqual(t, "microversion", config.Manila.Microversion, "2.61")
	assert.DeepEqual(t, "share groups", config.Manila.Features.ShareGroups, true)
	assert.DeepEqual(t, "share replicas", config.Manila.Features.ShareReplicas, true)
	assert.DeepEqual(t, "visible_items", config.Display.VisibleItems, 2)
	assert.DeepEqual(t, "text_width", config.Display.TextWidth, 40)
	assert.DeepEqual(t, "project cache TTL", config.ProjectCache.TTL(), time.Minute)
}

func TestConfigurationInvalid(t *testing.T) {
	inputs := []string{
		//missing catalog_url
		"manila: { microversion: '2.56' }",
		//malformed microversion
		"catalog_url: https://example.com\nmanila: { microversion: latest }",
		//too old for quota-sets detail
		"catalog_url: https://example.com\nmanila: { microversion: '2.24' }",
		//share groups are experimental before 2.55
		"catalog_url: https://example.com\nmanila: { microversion: '2.54', features: { share_groups: true } }",
		//share replicas are experimental before 2.56
		"catalog_url: https://example.com\nmanila: { microversion: '2.55', features: { share_replicas: true } }",
		//negative display options
		"catalog_url: https://example.com\ndisplay: { text_width: -1 }",
		//unknown field
		"catalog_url: https://example.com\nfoo: bar",
		//not YAML
		"{{{",
	}
	for _, input := range inputs {
		_, ok := parseConfiguration([]byte(input))
		if ok {
			t.Errorf("expected configuration to be invalid: %q", input)
		}
	}
}

func TestConfigurationMicroversionPerFeature(t *testing.T) {
	config, ok := parseConfiguration([]byte(`
catalog_url: https://example.com
manila:
  microversion: "2.55"
  features:
    share_groups: true
`))
	if !ok {
		t.Fatal("expected share groups to be accepted on 2.55")
	}
	assert.DeepEqual(t, "share groups", config.Manila.Features.ShareGroups, true)

	config, ok = parseConfiguration([]byte(`
catalog_url: https://example.com
manila:
  features:
    share_replicas: true
`))
	if !ok {
		t.Fatal("expected share replicas to be accepted on the default microversion")
	}
	assert.DeepEqual(t, "microversion", config.Manila.Microversion, "2.56")
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	err := os.WriteFile(path, []byte(`
"member": "role:member"
"share:show": "rule:member"
"share:edit": "role:admin"
`), 0644)
	if err != nil {
		t.Fatal(err.Error())
	}

	enforcer, err := loadPolicyFile(path)
	if err != nil {
		t.Fatal(err.Error())
	}
	ctx := policy.Context{Roles: []string{"member"}}
	assert.DeepEqual(t, "share:show", enforcer.Enforce("share:show", ctx), true)
	assert.DeepEqual(t, "share:edit", enforcer.Enforce("share:edit", ctx), false)

	_, err = loadPolicyFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected loading a missing policy file to fail")
	}
}
