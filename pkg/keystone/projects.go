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

// Package keystone resolves project IDs into project names.
package keystone

import (
	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack/identity/v3/projects"

	"github.com/sapcc/manila-ui/pkg/util"
)

// Project contains the fields of a Keystone project that we care about.
type Project struct {
	ID       string
	Name     string
	DomainID string
}

// ProjectLister lists all projects visible to the service user.
type ProjectLister interface {
	ListProjects() ([]Project, error)
}

// GophercloudLister is the ProjectLister for an actual Keystone.
type GophercloudLister struct {
	IdentityV3 *gophercloud.ServiceClient
}

// ListProjects implements the ProjectLister interface.
func (l GophercloudLister) ListProjects() ([]Project, error) {
	allPages, err := projects.List(l.IdentityV3, projects.ListOpts{}).AllPages()
	if err != nil {
		return nil, util.UnpackError(err)
	}
	allProjects, err := projects.ExtractProjects(allPages)
	if err != nil {
		return nil, err
	}

	result := make([]Project, len(allProjects))
	for idx, p := range allProjects {
		result[idx] = Project{
			ID:       p.ID,
			Name:     p.Name,
			DomainID: p.DomainID,
		}
	}
	return result, nil
}
