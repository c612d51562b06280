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
	"sync"
	"time"

	"github.com/sapcc/go-bits/logg"
)

// ProjectNameCache holds a snapshot of the project ID -> name mapping. The
// snapshot is refreshed from the ProjectLister once it is older than the TTL
// given by the caller.
type ProjectNameCache struct {
	lister ProjectLister

	mutex     sync.Mutex
	snapshot  map[string]string
	fetchedAt time.Time
}

// NewProjectNameCache creates an empty ProjectNameCache. The first call to
// GetOrRefresh() will fill it.
func NewProjectNameCache(lister ProjectLister) *ProjectNameCache {
	return &ProjectNameCache{lister: lister}
}

// GetOrRefresh returns the current snapshot, refreshing it first if it is
// missing or older than `ttl` at time `now`. If the refresh fails, the
// previous snapshot (if any) is returned together with the error. The
// returned map must not be modified.
func (c *ProjectNameCache) GetOrRefresh(now time.Time, ttl time.Duration) (map[string]string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.snapshot != nil && now.Sub(c.fetchedAt) < ttl {
		return c.snapshot, nil
	}

	projects, err := c.lister.ListProjects()
	if err != nil {
		return c.snapshot, err
	}
	snapshot := make(map[string]string, len(projects))
	for _, p := range projects {
		snapshot[p.ID] = p.Name
	}
	c.snapshot = snapshot
	c.fetchedAt = now
	return snapshot, nil
}

// Name returns the name of the given project, or an empty string if the
// project is unknown. Refresh errors are logged instead of returned, since a
// missing project name is merely cosmetic.
func (c *ProjectNameCache) Name(now time.Time, ttl time.Duration, projectID string) string {
	names, err := c.GetOrRefresh(now, ttl)
	if err != nil {
		logg.Error("cannot refresh project names from Keystone: %s", err.Error())
	}
	return names[projectID]
}
