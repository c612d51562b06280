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

// Package manila contains the adapter between the Manila API and the
// transport-independent logic in packages metadata and quota.
package manila

import (
	"github.com/sapcc/manila-ui/pkg/metadata"
	"github.com/sapcc/manila-ui/pkg/quota"
)

// Backend is the part of the Manila API that this application uses. The
// production implementation is GophercloudBackend; tests use a double.
type Backend interface {
	//GetQuota returns the quota set of the given project in the format of
	//the flat limits payload (see quota.RawLimits).
	GetQuota(projectID string) (quota.RawLimits, error)

	ListShares(projectID string) ([]Share, error)
	ListSnapshots(projectID string) ([]Snapshot, error)
	ListShareNetworks(projectID string) ([]ShareNetwork, error)
	ListShareGroups(projectID string) ([]ShareGroup, error)
	ListShareGroupSnapshots(projectID string) ([]ShareGroupSnapshot, error)
	ListShareReplicas(projectID string) ([]ShareReplica, error)

	GetShareTypeExtraSpecs(shareTypeID string) (metadata.Map, error)
	SetShareTypeExtraSpecs(shareTypeID string, specs metadata.Map) error
	UnsetShareTypeExtraSpec(shareTypeID, key string) error

	GetShareMetadata(shareID string) (metadata.Map, error)
	SetShareMetadata(shareID string, md metadata.Map) error
	UnsetShareMetadatum(shareID, key string) error
}

// Share contains the fields of a Manila share that we care about.
type Share struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	ProjectID     string `json:"project_id"`
	ShareTypeName string `json:"share_type_name"`
	//Size is in GiB.
	Size uint64 `json:"size"`
}

// Snapshot contains the fields of a Manila share snapshot that we care about.
type Snapshot struct {
	ID      string `json:"id"`
	ShareID string `json:"share_id"`
	Status  string `json:"status"`
	//Size and ShareSize are in GiB. Older Manila versions only report ShareSize.
	Size      uint64 `json:"size"`
	ShareSize uint64 `json:"share_size"`
}

// EffectiveSize returns the size that counts against the snapshot_gigabytes quota.
func (s Snapshot) EffectiveSize() uint64 {
	if s.Size == 0 {
		return s.ShareSize
	}
	return s.Size
}

// ShareNetwork contains the fields of a Manila share network that we care about.
type ShareNetwork struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
}

// ShareGroup contains the fields of a Manila share group that we care about.
type ShareGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	ProjectID string `json:"project_id"`
}

// ShareGroupSnapshot contains the fields of a Manila share group snapshot that
// we care about.
type ShareGroupSnapshot struct {
	ID           string `json:"id"`
	ShareGroupID string `json:"share_group_id"`
	Status       string `json:"status"`
}

// ShareReplica contains the fields of a Manila share replica that we care about.
type ShareReplica struct {
	ID           string `json:"id"`
	ShareID      string `json:"share_id"`
	ReplicaState string `json:"replica_state"`
}
