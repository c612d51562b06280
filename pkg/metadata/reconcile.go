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

package metadata

// Changes describes the API calls needed to get from an existing mapping to
// the state that the user requested.
type Changes struct {
	Set   Map      `json:"set"`
	Unset []string `json:"unset"`
}

// IsEmpty returns whether no API calls are needed at all.
func (c Changes) IsEmpty() bool {
	return c.Set.Len() == 0 && len(c.Unset) == 0
}

// Reconcile computes the minimal Changes to apply `requested` on top of
// `existing`. Entries whose value does not change are skipped, and so are
// unset requests for keys that do not exist.
func Reconcile(existing Map, requested ParseResult) Changes {
	result := Changes{Unset: []string{}}
	requested.Set.Each(func(key, value string) {
		oldValue, exists := existing.Get(key)
		if !exists || oldValue != value {
			result.Set.Set(key, value)
		}
	})
	for _, key := range requested.Unset {
		if existing.Has(key) {
			result.Unset = append(result.Unset, key)
		}
	}
	return result
}
