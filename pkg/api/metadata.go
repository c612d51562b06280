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
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/respondwith"

	"github.com/sapcc/manila-ui/pkg/metadata"
	"github.com/sapcc/manila-ui/pkg/util"
)

//metadataKind bundles the backend calls for one kind of key-value mapping
//(share metadata or share type extra specs), so that the same handlers can
//serve both.
type metadataKind struct {
	Name         string //for metrics and log messages
	ResponseKey  string
	NotFoundText string
	Get          func(id string) (metadata.Map, error)
	Set          func(id string, m metadata.Map) error
	Unset        func(id, key string) error
}

func (p *v1Provider) extraSpecsKind() metadataKind {
	return metadataKind{
		Name:         "share_type_extra_specs",
		ResponseKey:  "extra_specs",
		NotFoundText: "no such share type",
		Get:          p.Backend.GetShareTypeExtraSpecs,
		Set:          p.Backend.SetShareTypeExtraSpecs,
		Unset:        p.Backend.UnsetShareTypeExtraSpec,
	}
}

func (p *v1Provider) shareMetadataKind() metadataKind {
	return metadataKind{
		Name:         "share_metadata",
		ResponseKey:  "metadata",
		NotFoundText: "no such share",
		Get:          p.Backend.GetShareMetadata,
		Set:          p.Backend.SetShareMetadata,
		Unset:        p.Backend.UnsetShareMetadatum,
	}
}

//metadataUpdateRequest is the request body for PUT on metadata endpoints, and
//for POST /v1/metadata/parse.
type metadataUpdateRequest struct {
	Text string `json:"text"`
}

//GetShareTypeExtraSpecs handles GET /v1/share-types/:share_type_id/extra-specs.
func (p *v1Provider) GetShareTypeExtraSpecs(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/share-types/:id/extra-specs")
	token := p.CheckToken(r)
	if !token.Require(w, "share_type:show") {
		return
	}
	p.showMetadata(w, p.extraSpecsKind(), mux.Vars(r)["share_type_id"])
}

//PutShareTypeExtraSpecs handles PUT /v1/share-types/:share_type_id/extra-specs.
func (p *v1Provider) PutShareTypeExtraSpecs(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/share-types/:id/extra-specs")
	token := p.CheckToken(r)
	if !token.Require(w, "share_type:edit") {
		return
	}
	p.updateMetadata(w, r, p.extraSpecsKind(), mux.Vars(r)["share_type_id"])
}

//GetShareMetadata handles GET /v1/shares/:share_id/metadata.
func (p *v1Provider) GetShareMetadata(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/shares/:id/metadata")
	token := p.CheckToken(r)
	if !token.Require(w, "share:show") {
		return
	}
	p.showMetadata(w, p.shareMetadataKind(), mux.Vars(r)["share_id"])
}

//PutShareMetadata handles PUT /v1/shares/:share_id/metadata.
func (p *v1Provider) PutShareMetadata(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/shares/:id/metadata")
	token := p.CheckToken(r)
	if !token.Require(w, "share:edit") {
		return
	}
	p.updateMetadata(w, r, p.shareMetadataKind(), mux.Vars(r)["share_id"])
}

//ParseMetadata handles POST /v1/metadata/parse. This only validates the text
//and shows how it would be interpreted. No backend calls are made.
func (p *v1Provider) ParseMetadata(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/metadata/parse")
	token := p.CheckToken(r)
	if !token.Require(w, "metadata:parse") {
		return
	}
	var req metadataUpdateRequest
	if !RequireJSON(w, r, &req) {
		return
	}
	result, err := metadata.Parse(req.Text)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	respondwith.JSON(w, http.StatusOK, result)
}

func (p *v1Provider) showMetadata(w http.ResponseWriter, kind metadataKind, id string) {
	m, err := kind.Get(id)
	if respondWithBackendError(w, err, kind.NotFoundText) {
		return
	}
	respondwith.JSON(w, http.StatusOK, p.renderMetadata(kind, m))
}

func (p *v1Provider) renderMetadata(kind metadataKind, m metadata.Map) map[string]interface{} {
	result := map[string]interface{}{
		kind.ResponseKey: m,
		"text":           metadata.Stringify(m),
		"summary":        metadata.StringifyTruncated(m, p.Config.Display.VisibleItems, p.Config.Display.TextWidth),
	}
	//entries with line breaks cannot be edited through "text"
	if omitted := metadata.OmittedFromText(m); len(omitted) > 0 {
		result["text_omitted"] = omitted
	}
	return result
}

func (p *v1Provider) updateMetadata(w http.ResponseWriter, r *http.Request, kind metadataKind, id string) {
	var req metadataUpdateRequest
	if !RequireJSON(w, r, &req) {
		return
	}
	requested, err := metadata.Parse(req.Text)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	existing, err := kind.Get(id)
	if respondWithBackendError(w, err, kind.NotFoundText) {
		return
	}
	changes := metadata.Reconcile(existing, requested)

	if changes.Set.Len() > 0 {
		err = kind.Set(id, changes.Set)
		if respondWithBackendError(w, err, kind.NotFoundText) {
			return
		}
	}
	for _, key := range changes.Unset {
		err = kind.Unset(id, key)
		if respondWithBackendError(w, err, kind.NotFoundText) {
			return
		}
	}
	if !changes.IsEmpty() {
		metadataUpdateCounter.WithLabelValues(kind.Name).Inc()
		logg.Info("updated %s of %s: set %v, unset %v", kind.Name, id, changes.Set.Keys(), changes.Unset)
	}

	updated, err := kind.Get(id)
	if respondWithBackendError(w, err, kind.NotFoundText) {
		return
	}
	respondwith.JSON(w, http.StatusOK, p.renderMetadata(kind, updated))
}

//respondWithBackendError produces an error response if the given error is
//non-nil. Backend 404s become a 404 response with the given text.
func respondWithBackendError(w http.ResponseWriter, err error, notFoundText string) bool {
	if err == nil {
		return false
	}
	if util.IsNotFound(err) {
		http.Error(w, notFoundText, http.StatusNotFound)
		return true
	}
	return respondwith.ErrorText(w, err)
}
