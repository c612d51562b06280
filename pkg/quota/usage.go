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

package quota

// SizedItem is a resource that counts against a gigabytes quota.
type SizedItem struct {
	ID string
	//Size is in GiB.
	Size uint64
}

// Collections holds the independently listed resources of a project. A nil
// slice means that the respective collection was not listed (e.g. because the
// feature is disabled), whereas an empty slice means zero usage.
type Collections struct {
	Shares              []SizedItem
	Snapshots           []SizedItem
	Replicas            []SizedItem
	ShareNetworks       []string
	ShareGroups         []string
	ShareGroupSnapshots []string
}

// CountUsage sums up the listed collections into usage counters that can be
// merged over the RawLimits from the Manila API.
func CountUsage(c Collections) RawLimits {
	result := make(RawLimits)
	countSized := func(items []SizedItem, countKey, sizeKey string) {
		if items == nil {
			return
		}
		var size uint64
		for _, item := range items {
			size += item.Size
		}
		result[countKey] = int64(len(items))
		result[sizeKey] = int64(size)
	}
	count := func(ids []string, key string) {
		if ids == nil {
			return
		}
		result[key] = int64(len(ids))
	}

	countSized(c.Shares, fieldByName("shares").UsageKey(), fieldByName("gigabytes").UsageKey())
	countSized(c.Snapshots, fieldByName("snapshots").UsageKey(), fieldByName("snapshot_gigabytes").UsageKey())
	countSized(c.Replicas, fieldByName("share_replicas").UsageKey(), fieldByName("replica_gigabytes").UsageKey())
	count(c.ShareNetworks, fieldByName("share_networks").UsageKey())
	count(c.ShareGroups, fieldByName("share_groups").UsageKey())
	count(c.ShareGroupSnapshots, fieldByName("share_group_snapshots").UsageKey())
	return result
}

func fieldByName(name string) ResourceField {
	for _, field := range ResourceFields {
		if field.Name == name {
			return field
		}
	}
	panic("no such quota resource: " + name)
}
