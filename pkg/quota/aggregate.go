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

// Package quota turns the flat "absolute limits" payload of the Manila API
// into a per-resource view of usage and limits.
package quota

import "github.com/sapcc/go-api-declarations/limes"

// RawLimits is the flat mapping of named counters that Manila reports under
// GET /limits (e.g. "maxTotalShares" or "totalSharesUsed").
type RawLimits map[string]int64

// Merge returns a copy of `r` where all counters from `other` take precedence.
func (r RawLimits) Merge(other RawLimits) RawLimits {
	result := make(RawLimits, len(r)+len(other))
	for k, v := range r {
		result[k] = v
	}
	for k, v := range other {
		result[k] = v
	}
	return result
}

// ResourceField describes how one resource is represented in RawLimits.
type ResourceField struct {
	//Name is the resource name in the aggregated view, e.g. "shares".
	Name string
	//CounterName is the infix of the raw counters: the usage is read from
	//"total<CounterName>Used" and the limit from "maxTotal<CounterName>".
	CounterName string
	Unit        limes.Unit
}

// UsageKey returns the key of the usage counter in RawLimits.
func (f ResourceField) UsageKey() string {
	return "total" + f.CounterName + "Used"
}

// LimitKey returns the key of the limit counter in RawLimits.
func (f ResourceField) LimitKey() string {
	return "maxTotal" + f.CounterName
}

// ResourceFields is the fixed set of resources that Aggregate() looks for, in
// display order.
var ResourceFields = []ResourceField{
	{Name: "shares", CounterName: "Shares", Unit: limes.UnitNone},
	{Name: "gigabytes", CounterName: "ShareGigabytes", Unit: limes.UnitGibibytes},
	{Name: "snapshots", CounterName: "ShareSnapshots", Unit: limes.UnitNone},
	{Name: "snapshot_gigabytes", CounterName: "SnapshotGigabytes", Unit: limes.UnitGibibytes},
	{Name: "share_networks", CounterName: "ShareNetworks", Unit: limes.UnitNone},
	{Name: "share_groups", CounterName: "ShareGroups", Unit: limes.UnitNone},
	{Name: "share_group_snapshots", CounterName: "ShareGroupSnapshots", Unit: limes.UnitNone},
	{Name: "share_replicas", CounterName: "ShareReplicas", Unit: limes.UnitNone},
	{Name: "replica_gigabytes", CounterName: "ReplicaGigabytes", Unit: limes.UnitGibibytes},
}

// ResourceUsage is the usage and limit of a single resource.
type ResourceUsage struct {
	Used  int64      `json:"used"`
	Limit Limit      `json:"limit"`
	Unit  limes.Unit `json:"unit,omitempty"`
}

// Remaining returns how much of the limit is still available. This is never
// negative, even if usage exceeds the limit (which happens when quota is
// lowered below current usage).
func (u ResourceUsage) Remaining() Limit {
	limit, ok := u.Limit.Value()
	if !ok {
		return Unlimited
	}
	if u.Used >= limit {
		return Limit{}
	}
	return Limit{value: limit - u.Used}
}

// Usage maps resource names to their usage and limit.
type Usage map[string]ResourceUsage

// Names returns the names of all resources in this Usage, in the order of
// ResourceFields.
func (u Usage) Names() []string {
	var result []string
	for _, field := range ResourceFields {
		if _, exists := u[field.Name]; exists {
			result = append(result, field.Name)
		}
	}
	return result
}

// Aggregate builds the per-resource view from a RawLimits payload. Resources
// whose limit counter is missing are omitted: different deployments enable
// different Manila features, and an absent counter means that the feature is
// disabled. A missing usage counter is read as zero usage.
func Aggregate(raw RawLimits) Usage {
	result := make(Usage)
	for _, field := range ResourceFields {
		limit, exists := raw[field.LimitKey()]
		if !exists {
			continue
		}
		result[field.Name] = ResourceUsage{
			Used:  raw[field.UsageKey()],
			Limit: LimitOf(limit),
			Unit:  field.Unit,
		}
	}
	return result
}
