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

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/respondwith"

	"github.com/sapcc/manila-ui/pkg/manila"
	"github.com/sapcc/manila-ui/pkg/quota"
)

//ProjectQuota is the response body of GET /v1/projects/:id/quota.
type ProjectQuota struct {
	ProjectID   string      `json:"project_id"`
	ProjectName string      `json:"project_name,omitempty"`
	Resources   quota.Usage `json:"resources"`
}

//GetProjectQuota handles GET /v1/projects/:project_id/quota.
func (p *v1Provider) GetProjectQuota(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/projects/:id/quota")
	token := p.CheckToken(r)
	if !token.Require(w, "project:show_quota") {
		return
	}
	projectID := mux.Vars(r)["project_id"]

	features := manila.Features{
		ShareGroups:   p.Config.Manila.Features.ShareGroups,
		ShareReplicas: p.Config.Manila.Features.ShareReplicas,
	}
	usage, err := manila.GetQuotaUsage(p.Backend, projectID, features)
	if respondWithBackendError(w, err, "no such project") {
		return
	}

	result := ProjectQuota{
		ProjectID: projectID,
		Resources: usage,
	}
	if p.ProjectCache != nil {
		result.ProjectName = p.ProjectCache.Name(p.timeNow(), p.Config.ProjectCache.TTL(), projectID)
	}
	respondwith.JSON(w, http.StatusOK, map[string]interface{}{"quota": result})
}
