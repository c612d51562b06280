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

package test

import (
	"errors"
	"net/http"
	"strings"

	policy "github.com/databus23/goslo.policy"
	"github.com/sapcc/go-bits/gopherpolicy"
)

//PolicyEnforcer is a gopherpolicy.Enforcer implementation for API tests.
type PolicyEnforcer struct {
	AllowShow  bool
	AllowEdit  bool
	AllowParse bool
	//If set, all rules are rejected for requests with this "project_id" path
	//parameter.
	RejectProjectID string
}

//Enforce implements the gopherpolicy.Enforcer interface.
func (e *PolicyEnforcer) Enforce(rule string, ctx policy.Context) bool {
	if e.RejectProjectID != "" && ctx.Request["project_id"] == e.RejectProjectID {
		return false
	}
	fields := strings.Split(rule, ":")
	switch fields[len(fields)-1] {
	case "show", "show_quota":
		return e.AllowShow
	case "edit":
		return e.AllowEdit
	case "parse":
		return e.AllowParse
	default:
		return false
	}
}

//AllowEverything returns a PolicyEnforcer that allows all known rules.
func AllowEverything() *PolicyEnforcer {
	return &PolicyEnforcer{AllowShow: true, AllowEdit: true, AllowParse: true}
}

//Validator is a gopherpolicy.Validator implementation for API tests. It
//accepts every request that has an X-Auth-Token header, without asking
//Keystone.
type Validator struct {
	Enforcer *PolicyEnforcer
	Auth     map[string]string
}

//NewValidator creates a Validator that authenticates every request as a
//project member.
func NewValidator(enforcer *PolicyEnforcer) *Validator {
	return &Validator{
		Enforcer: enforcer,
		Auth: map[string]string{
			"user_id":          "uuid-for-alice",
			"user_name":        "alice",
			"user_domain_name": "Default",
			"project_id":       "uuid-for-dresden",
			"project_name":     "dresden",
		},
	}
}

//CheckToken implements the gopherpolicy.Validator interface.
func (v *Validator) CheckToken(r *http.Request) *gopherpolicy.Token {
	if r.Header.Get("X-Auth-Token") == "" {
		return &gopherpolicy.Token{Err: errors.New("X-Auth-Token header missing")}
	}
	auth := make(map[string]string, len(v.Auth))
	for k, val := range v.Auth {
		auth[k] = val
	}
	return &gopherpolicy.Token{
		Enforcer: v.Enforcer,
		Context: policy.Context{
			Auth:    auth,
			Request: map[string]string{},
		},
	}
}
