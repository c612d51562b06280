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

package keystone

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	th "github.com/gophercloud/gophercloud/testhelper"
	fake "github.com/gophercloud/gophercloud/testhelper/client"
	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/manila-ui/pkg/test"
)

type staticLister struct {
	Projects []Project
	Err      error
	Calls    int
}

func (l *staticLister) ListProjects() ([]Project, error) {
	l.Calls++
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Projects, nil
}

func TestProjectNameCache(t *testing.T) {
	clock := test.NewClock()
	ttl := 20 * time.Second
	lister := &staticLister{
		Projects: []Project{
			{ID: "uuid-for-berlin", Name: "berlin", DomainID: "uuid-for-germany"},
			{ID: "uuid-for-dresden", Name: "dresden", DomainID: "uuid-for-germany"},
		},
	}
	cache := NewProjectNameCache(lister)

	//first call fills the cache
	assert.DeepEqual(t, "name", cache.Name(clock.Now(), ttl, "uuid-for-berlin"), "berlin")
	assert.DeepEqual(t, "calls", lister.Calls, 1)

	//within the TTL, the snapshot is reused even if Keystone changes
	lister.Projects = append(lister.Projects, Project{ID: "uuid-for-paris", Name: "paris", DomainID: "uuid-for-france"})
	clock.StepBy(19 * time.Second)
	assert.DeepEqual(t, "name", cache.Name(clock.Now(), ttl, "uuid-for-paris"), "")
	assert.DeepEqual(t, "calls", lister.Calls, 1)

	//after the TTL, the snapshot is refreshed
	clock.StepBy(time.Second)
	assert.DeepEqual(t, "name", cache.Name(clock.Now(), ttl, "uuid-for-paris"), "paris")
	assert.DeepEqual(t, "calls", lister.Calls, 2)

	//when the refresh fails, the stale snapshot is still returned
	lister.Err = errors.New("Keystone is down")
	clock.StepBy(time.Minute)
	names, err := cache.GetOrRefresh(clock.Now(), ttl)
	if err == nil {
		t.Error("expected refresh to fail")
	}
	assert.DeepEqual(t, "stale snapshot", names, map[string]string{
		"uuid-for-berlin":  "berlin",
		"uuid-for-dresden": "dresden",
		"uuid-for-paris":   "paris",
	})
	assert.DeepEqual(t, "name", cache.Name(clock.Now(), ttl, "uuid-for-dresden"), "dresden")
	assert.DeepEqual(t, "calls", lister.Calls, 4)
}

func TestProjectNameCacheInitialFailure(t *testing.T) {
	clock := test.NewClock()
	cache := NewProjectNameCache(&staticLister{Err: errors.New("Keystone is down")})

	names, err := cache.GetOrRefresh(clock.Now(), time.Minute)
	if err == nil {
		t.Error("expected refresh to fail")
	}
	if names != nil {
		t.Errorf("expected no snapshot, got %#v", names)
	}
	assert.DeepEqual(t, "name", cache.Name(clock.Now(), time.Minute, "uuid-for-berlin"), "")
}

func TestGophercloudLister(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	th.Mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		th.TestHeader(t, r, "X-Auth-Token", fake.TokenID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{
			"links": {"next": null, "previous": null, "self": "http://localhost/projects"},
			"projects": [
				{"id": "uuid-for-berlin", "name": "berlin", "domain_id": "uuid-for-germany", "enabled": true},
				{"id": "uuid-for-paris", "name": "paris", "domain_id": "uuid-for-france", "enabled": true}
			]
		}`)
	})

	lister := GophercloudLister{IdentityV3: fake.ServiceClient()}
	projects, err := lister.ListProjects()
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []Project{
		{ID: "uuid-for-berlin", Name: "berlin", DomainID: "uuid-for-germany"},
		{ID: "uuid-for-paris", Name: "paris", DomainID: "uuid-for-france"},
	}, projects)
}
