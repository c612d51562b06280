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
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack/sharedfilesystems/v2/sharenetworks"
	"github.com/gophercloud/gophercloud/openstack/sharedfilesystems/v2/sharetypes"
	"github.com/gophercloud/gophercloud/pagination"

	"github.com/sapcc/manila-ui/pkg/metadata"
	"github.com/sapcc/manila-ui/pkg/quota"
	"github.com/sapcc/manila-ui/pkg/util"
)

// pageSize is how many items are requested per page from collections that
// gophercloud does not have a pager for.
const pageSize = 250

// GophercloudBackend implements the Backend interface on top of a gophercloud
// ServiceClient for the Manila v2 API.
type GophercloudBackend struct {
	Client *gophercloud.ServiceClient
}

// NewGophercloudBackend wraps the given ServiceClient. The client's
// Microversion should be set by the caller.
func NewGophercloudBackend(client *gophercloud.ServiceClient) *GophercloudBackend {
	return &GophercloudBackend{Client: client}
}

// GetQuota implements the Backend interface.
func (b *GophercloudBackend) GetQuota(projectID string) (result quota.RawLimits, err error) {
	defer func() { countBackendError("get_quota", err) }()

	var r gophercloud.Result
	_, r.Err = b.Client.Get(b.Client.ServiceURL("quota-sets", projectID, "detail"), &r.Body, nil)
	var data struct {
		QuotaSet map[string]json.RawMessage `json:"quota_set"`
	}
	err = r.ExtractInto(&data)
	if err != nil {
		return nil, fmt.Errorf("cannot get quota of project %s: %w", projectID, util.UnpackError(err))
	}

	result = make(quota.RawLimits)
	for _, field := range quota.ResourceFields {
		buf, exists := data.QuotaSet[field.Name]
		if !exists {
			continue
		}
		var detail struct {
			InUse int64 `json:"in_use"`
			Limit int64 `json:"limit"`
		}
		err = json.Unmarshal(buf, &detail)
		if err != nil {
			return nil, fmt.Errorf("cannot parse quota for %s of project %s: %w", field.Name, projectID, err)
		}
		result[field.LimitKey()] = detail.Limit
		result[field.UsageKey()] = detail.InUse
	}
	return result, nil
}

// ListShares implements the Backend interface.
func (b *GophercloudBackend) ListShares(projectID string) (result []Share, err error) {
	defer func() { countBackendError("list_shares", err) }()
	return listAll[Share](b.Client, "shares", projectID)
}

// ListSnapshots implements the Backend interface.
func (b *GophercloudBackend) ListSnapshots(projectID string) (result []Snapshot, err error) {
	defer func() { countBackendError("list_snapshots", err) }()
	return listAll[Snapshot](b.Client, "snapshots", projectID)
}

// ListShareGroups implements the Backend interface.
func (b *GophercloudBackend) ListShareGroups(projectID string) (result []ShareGroup, err error) {
	defer func() { countBackendError("list_share_groups", err) }()
	return listAll[ShareGroup](b.Client, "share-groups", projectID)
}

// ListShareGroupSnapshots implements the Backend interface.
func (b *GophercloudBackend) ListShareGroupSnapshots(projectID string) (result []ShareGroupSnapshot, err error) {
	defer func() { countBackendError("list_share_group_snapshots", err) }()
	return listAll[ShareGroupSnapshot](b.Client, "share-group-snapshots", projectID)
}

// ListShareReplicas implements the Backend interface. Manila does not filter
// replicas by project, so the result may contain replicas of other projects'
// shares when running with admin privileges. Callers need to filter by ShareID.
func (b *GophercloudBackend) ListShareReplicas(projectID string) (result []ShareReplica, err error) {
	defer func() { countBackendError("list_share_replicas", err) }()
	return listAll[ShareReplica](b.Client, "share-replicas", projectID)
}

// ListShareNetworks implements the Backend interface.
func (b *GophercloudBackend) ListShareNetworks(projectID string) (result []ShareNetwork, err error) {
	defer func() { countBackendError("list_share_networks", err) }()

	opts := sharenetworks.ListOpts{ProjectID: projectID}
	err = sharenetworks.ListDetail(b.Client, opts).EachPage(func(page pagination.Page) (bool, error) {
		networks, err := sharenetworks.ExtractShareNetworks(page)
		if err != nil {
			return false, err
		}
		for _, sn := range networks {
			result = append(result, ShareNetwork{
				ID:        sn.ID,
				Name:      sn.Name,
				ProjectID: sn.ProjectID,
			})
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list share networks of project %s: %w", projectID, util.UnpackError(err))
	}
	if result == nil {
		result = []ShareNetwork{}
	}
	return result, nil
}

// GetShareTypeExtraSpecs implements the Backend interface.
func (b *GophercloudBackend) GetShareTypeExtraSpecs(shareTypeID string) (result metadata.Map, err error) {
	defer func() { countBackendError("get_share_type_extra_specs", err) }()

	specs, err := sharetypes.GetExtraSpecs(b.Client, shareTypeID).Extract()
	if err != nil {
		return metadata.Map{}, fmt.Errorf("cannot get extra specs of share type %s: %w", shareTypeID, util.UnpackError(err))
	}
	plain := make(map[string]string, len(specs))
	for key, value := range specs {
		//Manila stores extra specs as strings, but some deployments have
		//booleans in the DB from before that was enforced
		plain[key] = fmt.Sprintf("%v", value)
	}
	return metadata.FromMap(plain), nil
}

// SetShareTypeExtraSpecs implements the Backend interface.
func (b *GophercloudBackend) SetShareTypeExtraSpecs(shareTypeID string, specs metadata.Map) (err error) {
	defer func() { countBackendError("set_share_type_extra_specs", err) }()

	opts := sharetypes.SetExtraSpecsOpts{ExtraSpecs: make(map[string]interface{}, specs.Len())}
	specs.Each(func(key, value string) {
		opts.ExtraSpecs[key] = value
	})
	_, err = sharetypes.SetExtraSpecs(b.Client, shareTypeID, opts).Extract()
	if err != nil {
		return fmt.Errorf("cannot set extra specs of share type %s: %w", shareTypeID, util.UnpackError(err))
	}
	return nil
}

// UnsetShareTypeExtraSpec implements the Backend interface.
func (b *GophercloudBackend) UnsetShareTypeExtraSpec(shareTypeID, key string) (err error) {
	defer func() { countBackendError("unset_share_type_extra_spec", err) }()

	err = sharetypes.UnsetExtraSpecs(b.Client, shareTypeID, key).ExtractErr()
	if err != nil {
		return fmt.Errorf("cannot unset extra spec %q of share type %s: %w", key, shareTypeID, util.UnpackError(err))
	}
	return nil
}

// GetShareMetadata implements the Backend interface.
func (b *GophercloudBackend) GetShareMetadata(shareID string) (result metadata.Map, err error) {
	defer func() { countBackendError("get_share_metadata", err) }()

	var r gophercloud.Result
	_, r.Err = b.Client.Get(b.Client.ServiceURL("shares", shareID, "metadata"), &r.Body, nil)
	var data struct {
		Metadata map[string]string `json:"metadata"`
	}
	err = r.ExtractInto(&data)
	if err != nil {
		return metadata.Map{}, fmt.Errorf("cannot get metadata of share %s: %w", shareID, util.UnpackError(err))
	}
	return metadata.FromMap(data.Metadata), nil
}

// SetShareMetadata implements the Backend interface. Existing keys that are
// not mentioned in `md` are left unchanged.
func (b *GophercloudBackend) SetShareMetadata(shareID string, md metadata.Map) (err error) {
	defer func() { countBackendError("set_share_metadata", err) }()

	body := map[string]interface{}{"metadata": md.ToMap()}
	expect200 := &gophercloud.RequestOpts{OkCodes: []int{200}}
	_, err = b.Client.Post(b.Client.ServiceURL("shares", shareID, "metadata"), body, nil, expect200)
	if err != nil {
		return fmt.Errorf("cannot set metadata of share %s: %w", shareID, util.UnpackError(err))
	}
	return nil
}

// UnsetShareMetadatum implements the Backend interface.
func (b *GophercloudBackend) UnsetShareMetadatum(shareID, key string) (err error) {
	defer func() { countBackendError("unset_share_metadatum", err) }()

	expect200 := &gophercloud.RequestOpts{OkCodes: []int{200}}
	_, err = b.Client.Delete(b.Client.ServiceURL("shares", shareID, "metadata", url.PathEscape(key)), expect200)
	if err != nil {
		return fmt.Errorf("cannot unset metadata key %q of share %s: %w", key, shareID, util.UnpackError(err))
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// listAll pages through a Manila collection with limit/offset until an empty
// page is returned. The collection name in the JSON response is the path
// segment with dashes replaced by underscores (e.g. "share-groups" ->
// "share_groups").
func listAll[T any](client *gophercloud.ServiceClient, collection, projectID string) ([]T, error) {
	jsonKey := strings.ReplaceAll(collection, "-", "_")
	result := []T{}
	page := 0

	for {
		query := url.Values{}
		query.Set("project_id", projectID)
		query.Set("all_tenants", "1")
		query.Set("limit", fmt.Sprint(pageSize))
		query.Set("offset", fmt.Sprint(page*pageSize))
		listURL := client.ServiceURL(collection, "detail") + "?" + query.Encode()

		var r gophercloud.Result
		_, r.Err = client.Get(listURL, &r.Body, nil)
		var data map[string]json.RawMessage
		err := r.ExtractInto(&data)
		if err != nil {
			return nil, fmt.Errorf("cannot list %s of project %s: %w", collection, projectID, util.UnpackError(err))
		}

		var items []T
		if buf, exists := data[jsonKey]; exists {
			err = json.Unmarshal(buf, &items)
			if err != nil {
				return nil, fmt.Errorf("cannot parse %s of project %s: %w", collection, projectID, err)
			}
		}
		if len(items) == 0 {
			//last page reached
			return result, nil
		}
		result = append(result, items...)
		page++
	}
}
