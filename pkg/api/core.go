/*******************************************************************************
*
* Copyright 2017-2022 SAP SE
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
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sapcc/go-bits/gopherpolicy"
	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/respondwith"

	"github.com/sapcc/manila-ui/pkg/core"
	"github.com/sapcc/manila-ui/pkg/keystone"
	"github.com/sapcc/manila-ui/pkg/manila"
)

//VersionData is used by version advertisement handlers.
type VersionData struct {
	Status string            `json:"status"`
	ID     string            `json:"id"`
	Links  []VersionLinkData `json:"links"`
}

//VersionLinkData is used by version advertisement handlers, as part of the
//VersionData struct.
type VersionLinkData struct {
	URL      string `json:"href"`
	Relation string `json:"rel"`
	Type     string `json:"type,omitempty"`
}

type v1Provider struct {
	Config         core.Configuration
	Backend        manila.Backend
	ProjectCache   *keystone.ProjectNameCache
	TokenValidator gopherpolicy.Validator
	VersionData    VersionData
	//replaced by a simulated clock in unit tests
	timeNow func() time.Time
}

//NewV1API creates an httpapi.API that serves the v1 API, including the
//version advertisement on "GET /".
func NewV1API(config core.Configuration, backend manila.Backend, projectCache *keystone.ProjectNameCache, tokenValidator gopherpolicy.Validator, timeNow func() time.Time) httpapi.API {
	p := &v1Provider{
		Config:         config,
		Backend:        backend,
		ProjectCache:   projectCache,
		TokenValidator: tokenValidator,
		timeNow:        timeNow,
	}
	p.VersionData = VersionData{
		Status: "CURRENT",
		ID:     "v1",
		Links: []VersionLinkData{
			{
				Relation: "self",
				URL:      p.Path(),
			},
			{
				Relation: "describedby",
				URL:      "https://github.com/sapcc/manila-ui/tree/master/docs",
				Type:     "text/html",
			},
		},
	}
	return p
}

//AddTo implements the httpapi.API interface.
func (p *v1Provider) AddTo(r *mux.Router) {
	r.Methods("HEAD", "GET").Path("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpapi.IdentifyEndpoint(r, "/")
		httpapi.SkipRequestLog(r)
		respondwith.JSON(w, 300, map[string]interface{}{"versions": []VersionData{p.VersionData}})
	})

	r.Methods("GET").Path("/v1/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpapi.IdentifyEndpoint(r, "/v1/")
		httpapi.SkipRequestLog(r)
		respondwith.JSON(w, 200, map[string]interface{}{"version": p.VersionData})
	})

	r.Methods("GET").Path("/v1/projects/{project_id}/quota").HandlerFunc(p.GetProjectQuota)

	r.Methods("GET").Path("/v1/share-types/{share_type_id}/extra-specs").HandlerFunc(p.GetShareTypeExtraSpecs)
	r.Methods("PUT").Path("/v1/share-types/{share_type_id}/extra-specs").HandlerFunc(p.PutShareTypeExtraSpecs)

	r.Methods("GET").Path("/v1/shares/{share_id}/metadata").HandlerFunc(p.GetShareMetadata)
	r.Methods("PUT").Path("/v1/shares/{share_id}/metadata").HandlerFunc(p.PutShareMetadata)

	r.Methods("POST").Path("/v1/metadata/parse").HandlerFunc(p.ParseMetadata)
}

//RequireJSON will parse the request body into the given data structure, or
//write an error response if that fails.
func RequireJSON(w http.ResponseWriter, r *http.Request, data interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(data)
	if err != nil {
		http.Error(w, "request body is not valid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

//Path constructs a full URL for a given URL path below the /v1/ endpoint.
func (p *v1Provider) Path(elements ...string) string {
	parts := []string{
		strings.TrimSuffix(p.Config.CatalogURL, "/"),
		"v1",
	}
	parts = append(parts, elements...)
	return strings.Join(parts, "/")
}

//CheckToken checks the validity of the request's X-Auth-Token in Keystone, and
//returns a Token instance for checking authorization. Any errors that occur
//during this function are deferred until Require() is called.
func (p *v1Provider) CheckToken(r *http.Request) *gopherpolicy.Token {
	t := p.TokenValidator.CheckToken(r)
	t.Context.Request = mux.Vars(r)
	return t
}
