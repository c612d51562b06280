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
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud"

	"github.com/sapcc/manila-ui/pkg/manila"
	"github.com/sapcc/manila-ui/pkg/metadata"
	"github.com/sapcc/manila-ui/pkg/quota"
)

//Backend is a manila.Backend implementation for unit tests that does not talk
//to an actual Manila. All collections are keyed by project ID, all metadata
//maps by share (type) ID. Unknown share (type) IDs yield a 404 error like the
//real API would.
type Backend struct {
	Quotas              map[string]quota.RawLimits
	Shares              map[string][]manila.Share
	Snapshots           map[string][]manila.Snapshot
	ShareNetworks       map[string][]manila.ShareNetwork
	ShareGroups         map[string][]manila.ShareGroup
	ShareGroupSnapshots map[string][]manila.ShareGroupSnapshot
	ShareReplicas       map[string][]manila.ShareReplica
	ExtraSpecs          map[string]*metadata.Map
	ShareMetadata       map[string]*metadata.Map

	//Calls records every call in the form "Method(arg1,arg2)" in order.
	Calls []string
	//If set, every call fails with this error.
	Err error
}

//NewBackend creates an empty Backend.
func NewBackend() *Backend {
	return &Backend{
		Quotas:              make(map[string]quota.RawLimits),
		Shares:              make(map[string][]manila.Share),
		Snapshots:           make(map[string][]manila.Snapshot),
		ShareNetworks:       make(map[string][]manila.ShareNetwork),
		ShareGroups:         make(map[string][]manila.ShareGroup),
		ShareGroupSnapshots: make(map[string][]manila.ShareGroupSnapshot),
		ShareReplicas:       make(map[string][]manila.ShareReplica),
		ExtraSpecs:          make(map[string]*metadata.Map),
		ShareMetadata:       make(map[string]*metadata.Map),
	}
}

func (b *Backend) record(method string, args ...interface{}) error {
	argStr := ""
	for idx, arg := range args {
		if idx > 0 {
			argStr += ","
		}
		argStr += fmt.Sprint(arg)
	}
	b.Calls = append(b.Calls, fmt.Sprintf("%s(%s)", method, argStr))
	return b.Err
}

func notFound(method, url string) error {
	return gophercloud.ErrDefault404{
		ErrUnexpectedResponseCode: gophercloud.ErrUnexpectedResponseCode{
			Method:   method,
			URL:      url,
			Expected: []int{http.StatusOK},
			Actual:   http.StatusNotFound,
			Body:     []byte("not found"),
		},
	}
}

//GetQuota implements the manila.Backend interface.
func (b *Backend) GetQuota(projectID string) (quota.RawLimits, error) {
	if err := b.record("GetQuota", projectID); err != nil {
		return nil, err
	}
	return b.Quotas[projectID].Merge(nil), nil
}

//ListShares implements the manila.Backend interface.
func (b *Backend) ListShares(projectID string) ([]manila.Share, error) {
	if err := b.record("ListShares", projectID); err != nil {
		return nil, err
	}
	return append([]manila.Share{}, b.Shares[projectID]...), nil
}

//ListSnapshots implements the manila.Backend interface.
func (b *Backend) ListSnapshots(projectID string) ([]manila.Snapshot, error) {
	if err := b.record("ListSnapshots", projectID); err != nil {
		return nil, err
	}
	return append([]manila.Snapshot{}, b.Snapshots[projectID]...), nil
}

//ListShareNetworks implements the manila.Backend interface.
func (b *Backend) ListShareNetworks(projectID string) ([]manila.ShareNetwork, error) {
	if err := b.record("ListShareNetworks", projectID); err != nil {
		return nil, err
	}
	return append([]manila.ShareNetwork{}, b.ShareNetworks[projectID]...), nil
}

//ListShareGroups implements the manila.Backend interface.
func (b *Backend) ListShareGroups(projectID string) ([]manila.ShareGroup, error) {
	if err := b.record("ListShareGroups", projectID); err != nil {
		return nil, err
	}
	return append([]manila.ShareGroup{}, b.ShareGroups[projectID]...), nil
}

//ListShareGroupSnapshots implements the manila.Backend interface.
func (b *Backend) ListShareGroupSnapshots(projectID string) ([]manila.ShareGroupSnapshot, error) {
	if err := b.record("ListShareGroupSnapshots", projectID); err != nil {
		return nil, err
	}
	return append([]manila.ShareGroupSnapshot{}, b.ShareGroupSnapshots[projectID]...), nil
}

//ListShareReplicas implements the manila.Backend interface.
func (b *Backend) ListShareReplicas(projectID string) ([]manila.ShareReplica, error) {
	if err := b.record("ListShareReplicas", projectID); err != nil {
		return nil, err
	}
	return append([]manila.ShareReplica{}, b.ShareReplicas[projectID]...), nil
}

//GetShareTypeExtraSpecs implements the manila.Backend interface.
func (b *Backend) GetShareTypeExtraSpecs(shareTypeID string) (metadata.Map, error) {
	if err := b.record("GetShareTypeExtraSpecs", shareTypeID); err != nil {
		return metadata.Map{}, err
	}
	specs, exists := b.ExtraSpecs[shareTypeID]
	if !exists {
		return metadata.Map{}, notFound("GET", "/types/"+shareTypeID+"/extra_specs")
	}
	return metadata.FromMap(specs.ToMap()), nil
}

//SetShareTypeExtraSpecs implements the manila.Backend interface.
func (b *Backend) SetShareTypeExtraSpecs(shareTypeID string, specs metadata.Map) error {
	if err := b.record("SetShareTypeExtraSpecs", shareTypeID, specs.Keys()); err != nil {
		return err
	}
	existing, exists := b.ExtraSpecs[shareTypeID]
	if !exists {
		return notFound("POST", "/types/"+shareTypeID+"/extra_specs")
	}
	specs.Each(existing.Set)
	return nil
}

//UnsetShareTypeExtraSpec implements the manila.Backend interface.
func (b *Backend) UnsetShareTypeExtraSpec(shareTypeID, key string) error {
	if err := b.record("UnsetShareTypeExtraSpec", shareTypeID, key); err != nil {
		return err
	}
	existing, exists := b.ExtraSpecs[shareTypeID]
	if !exists || !existing.Has(key) {
		return notFound("DELETE", "/types/"+shareTypeID+"/extra_specs/"+key)
	}
	existing.Delete(key)
	return nil
}

//GetShareMetadata implements the manila.Backend interface.
func (b *Backend) GetShareMetadata(shareID string) (metadata.Map, error) {
	if err := b.record("GetShareMetadata", shareID); err != nil {
		return metadata.Map{}, err
	}
	md, exists := b.ShareMetadata[shareID]
	if !exists {
		return metadata.Map{}, notFound("GET", "/shares/"+shareID+"/metadata")
	}
	return metadata.FromMap(md.ToMap()), nil
}

//SetShareMetadata implements the manila.Backend interface.
func (b *Backend) SetShareMetadata(shareID string, md metadata.Map) error {
	if err := b.record("SetShareMetadata", shareID, md.Keys()); err != nil {
		return err
	}
	existing, exists := b.ShareMetadata[shareID]
	if !exists {
		return notFound("POST", "/shares/"+shareID+"/metadata")
	}
	md.Each(existing.Set)
	return nil
}

//UnsetShareMetadatum implements the manila.Backend interface.
func (b *Backend) UnsetShareMetadatum(shareID, key string) error {
	if err := b.record("UnsetShareMetadatum", shareID, key); err != nil {
		return err
	}
	existing, exists := b.ShareMetadata[shareID]
	if !exists || !existing.Has(key) {
		return notFound("DELETE", "/shares/"+shareID+"/metadata/"+key)
	}
	existing.Delete(key)
	return nil
}
