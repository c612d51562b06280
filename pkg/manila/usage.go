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

package manila

import (
	"github.com/sapcc/manila-ui/pkg/quota"
)

// Features selects which optional collections CollectUsage() lists.
type Features struct {
	ShareGroups   bool
	ShareReplicas bool
}

// CollectUsage lists all resources of the given project that count against
// quota. Collections for disabled features are left nil, so that the usage
// reported by Manila itself is not overridden for them.
func CollectUsage(backend Backend, projectID string, features Features) (quota.Collections, error) {
	var result quota.Collections

	shares, err := backend.ListShares(projectID)
	if err != nil {
		return quota.Collections{}, err
	}
	result.Shares = make([]quota.SizedItem, len(shares))
	shareSizeByID := make(map[string]uint64, len(shares))
	for idx, share := range shares {
		result.Shares[idx] = quota.SizedItem{ID: share.ID, Size: share.Size}
		shareSizeByID[share.ID] = share.Size
	}

	snapshots, err := backend.ListSnapshots(projectID)
	if err != nil {
		return quota.Collections{}, err
	}
	result.Snapshots = make([]quota.SizedItem, len(snapshots))
	for idx, snapshot := range snapshots {
		result.Snapshots[idx] = quota.SizedItem{ID: snapshot.ID, Size: snapshot.EffectiveSize()}
	}

	networks, err := backend.ListShareNetworks(projectID)
	if err != nil {
		return quota.Collections{}, err
	}
	result.ShareNetworks = make([]string, len(networks))
	for idx, network := range networks {
		result.ShareNetworks[idx] = network.ID
	}

	if features.ShareGroups {
		groups, err := backend.ListShareGroups(projectID)
		if err != nil {
			return quota.Collections{}, err
		}
		result.ShareGroups = make([]string, len(groups))
		for idx, group := range groups {
			result.ShareGroups[idx] = group.ID
		}

		groupSnapshots, err := backend.ListShareGroupSnapshots(projectID)
		if err != nil {
			return quota.Collections{}, err
		}
		result.ShareGroupSnapshots = make([]string, len(groupSnapshots))
		for idx, groupSnapshot := range groupSnapshots {
			result.ShareGroupSnapshots[idx] = groupSnapshot.ID
		}
	}

	if features.ShareReplicas {
		replicas, err := backend.ListShareReplicas(projectID)
		if err != nil {
			return quota.Collections{}, err
		}
		result.Replicas = []quota.SizedItem{}
		for _, replica := range replicas {
			//replicas of shares outside this project are not ours to count
			size, isOurs := shareSizeByID[replica.ShareID]
			if !isOurs {
				continue
			}
			result.Replicas = append(result.Replicas, quota.SizedItem{ID: replica.ID, Size: size})
		}
	}

	return result, nil
}

// GetQuotaUsage combines the quota set reported by Manila with the usage
// counted from the project's resources into the aggregated quota view.
func GetQuotaUsage(backend Backend, projectID string, features Features) (quota.Usage, error) {
	raw, err := backend.GetQuota(projectID)
	if err != nil {
		return nil, err
	}
	collections, err := CollectUsage(backend, projectID, features)
	if err != nil {
		return nil, err
	}
	return quota.Aggregate(raw.Merge(quota.CountUsage(collections))), nil
}
