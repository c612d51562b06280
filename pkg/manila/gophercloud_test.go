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
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	th "github.com/gophercloud/gophercloud/testhelper"
	fake "github.com/gophercloud/gophercloud/testhelper/client"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sapcc/manila-ui/pkg/metadata"
	"github.com/sapcc/manila-ui/pkg/quota"
	"github.com/sapcc/manila-ui/pkg/util"
)

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprint(w, body)
}

// handlePaged serves `firstPage` for the first page of a limit/offset
// collection and an empty collection for all following pages.
func handlePaged(t *testing.T, path, projectID, jsonKey, firstPage string) {
	th.Mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		th.TestHeader(t, r, "X-Auth-Token", fake.TokenID)
		th.TestFormValues(t, r, map[string]string{
			"project_id":  projectID,
			"all_tenants": "1",
			"limit":       "250",
			"offset":      r.URL.Query().Get("offset"),
		})
		if r.URL.Query().Get("offset") == "0" {
			writeJSON(w, http.StatusOK, fmt.Sprintf(`{%q: %s}`, jsonKey, firstPage))
		} else {
			writeJSON(w, http.StatusOK, fmt.Sprintf(`{%q: []}`, jsonKey))
		}
	})
}

func TestGetQuota(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	th.Mux.HandleFunc("/quota-sets/project1/detail", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		writeJSON(w, http.StatusOK, `{
			"quota_set": {
				"id": "project1",
				"shares": {"in_use": 3, "limit": 50, "reserved": 0},
				"gigabytes": {"in_use": 120, "limit": -1, "reserved": 0},
				"snapshots": {"in_use": 1, "limit": 50, "reserved": 0},
				"share_networks": {"in_use": 1, "limit": 10, "reserved": 0}
			}
		}`)
	})

	backend := NewGophercloudBackend(fake.ServiceClient())
	raw, err := backend.GetQuota("project1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, quota.RawLimits{
		"maxTotalShares":          50,
		"totalSharesUsed":         3,
		"maxTotalShareGigabytes":  -1,
		"totalShareGigabytesUsed": 120,
		"maxTotalShareSnapshots":  50,
		"totalShareSnapshotsUsed": 1,
		"maxTotalShareNetworks":   10,
		"totalShareNetworksUsed":  1,
	}, raw)
}

func TestListShares(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	handlePaged(t, "/shares/detail", "project1", "shares", `[
		{"id": "share1", "name": "first", "status": "available", "project_id": "project1", "share_type_name": "default", "size": 10},
		{"id": "share2", "name": "second", "status": "creating", "project_id": "project1", "share_type_name": "hypervisor_storage", "size": 25}
	]`)

	backend := NewGophercloudBackend(fake.ServiceClient())
	shares, err := backend.ListShares("project1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []Share{
		{ID: "share1", Name: "first", Status: "available", ProjectID: "project1", ShareTypeName: "default", Size: 10},
		{ID: "share2", Name: "second", Status: "creating", ProjectID: "project1", ShareTypeName: "hypervisor_storage", Size: 25},
	}, shares)
}

func TestListSharesAcrossPages(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	const shareCount = 600
	var requestedOffsets []string
	th.Mux.HandleFunc("/shares/detail", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		query := r.URL.Query()
		th.CheckEquals(t, "250", query.Get("limit"))
		requestedOffsets = append(requestedOffsets, query.Get("offset"))

		offset, err := strconv.Atoi(query.Get("offset"))
		th.AssertNoErr(t, err)
		items := []string{}
		for idx := offset; idx < shareCount && idx < offset+pageSize; idx++ {
			items = append(items, fmt.Sprintf(`{"id": "share%d", "project_id": "project1", "size": 1}`, idx))
		}
		writeJSON(w, http.StatusOK, `{"shares": [`+strings.Join(items, ",")+`]}`)
	})

	backend := NewGophercloudBackend(fake.ServiceClient())
	shares, err := backend.ListShares("project1")
	th.AssertNoErr(t, err)
	th.CheckEquals(t, shareCount, len(shares))
	th.CheckEquals(t, "share0", shares[0].ID)
	th.CheckEquals(t, "share599", shares[shareCount-1].ID)
	th.CheckDeepEquals(t, []string{"0", "250", "500", "750"}, requestedOffsets)
}

func TestListEmptyCollections(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	handlePaged(t, "/share-groups/detail", "project1", "share_groups", `[]`)
	handlePaged(t, "/share-replicas/detail", "project1", "share_replicas", `[]`)

	backend := NewGophercloudBackend(fake.ServiceClient())
	groups, err := backend.ListShareGroups("project1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []ShareGroup{}, groups)

	replicas, err := backend.ListShareReplicas("project1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []ShareReplica{}, replicas)
}

func TestListSnapshotsAndReplicas(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	handlePaged(t, "/snapshots/detail", "project1", "snapshots", `[
		{"id": "snap1", "share_id": "share1", "status": "available", "size": 10, "share_size": 10},
		{"id": "snap2", "share_id": "share2", "status": "available", "share_size": 25}
	]`)
	handlePaged(t, "/share-replicas/detail", "project1", "share_replicas", `[
		{"id": "replica1", "share_id": "share1", "replica_state": "in_sync"}
	]`)
	handlePaged(t, "/share-group-snapshots/detail", "project1", "share_group_snapshots", `[
		{"id": "gsnap1", "share_group_id": "group1", "status": "available"}
	]`)

	backend := NewGophercloudBackend(fake.ServiceClient())
	snapshots, err := backend.ListSnapshots("project1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []Snapshot{
		{ID: "snap1", ShareID: "share1", Status: "available", Size: 10, ShareSize: 10},
		{ID: "snap2", ShareID: "share2", Status: "available", ShareSize: 25},
	}, snapshots)
	th.CheckEquals(t, uint64(25), snapshots[1].EffectiveSize())

	replicas, err := backend.ListShareReplicas("project1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []ShareReplica{
		{ID: "replica1", ShareID: "share1", ReplicaState: "in_sync"},
	}, replicas)

	groupSnapshots, err := backend.ListShareGroupSnapshots("project1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []ShareGroupSnapshot{
		{ID: "gsnap1", ShareGroupID: "group1", Status: "available"},
	}, groupSnapshots)
}

func TestListShareNetworks(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	th.Mux.HandleFunc("/share-networks/detail", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		if err := r.ParseForm(); err != nil {
			t.Errorf("cannot parse form: %s", err.Error())
		}
		if r.Form.Get("offset") != "" {
			writeJSON(w, http.StatusOK, `{"share_networks": []}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"share_networks": [
			{"id": "net1", "name": "default", "project_id": "project1"}
		]}`)
	})

	backend := NewGophercloudBackend(fake.ServiceClient())
	networks, err := backend.ListShareNetworks("project1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []ShareNetwork{
		{ID: "net1", Name: "default", ProjectID: "project1"},
	}, networks)
}

func TestShareTypeExtraSpecs(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	th.Mux.HandleFunc("/types/type1/extra_specs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			writeJSON(w, http.StatusOK, `{"extra_specs": {"snapshot_support": "True", "driver_handles_share_servers": false}}`)
		case "POST":
			th.TestJSONRequest(t, r, `{"extra_specs": {"replication_type": "dr"}}`)
			writeJSON(w, http.StatusOK, `{"extra_specs": {"replication_type": "dr"}}`)
		default:
			t.Errorf("unexpected method: %s", r.Method)
		}
	})
	th.Mux.HandleFunc("/types/type1/extra_specs/snapshot_support", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "DELETE")
		w.WriteHeader(http.StatusAccepted)
	})

	backend := NewGophercloudBackend(fake.ServiceClient())
	specs, err := backend.GetShareTypeExtraSpecs("type1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, map[string]string{
		"driver_handles_share_servers": "false",
		"snapshot_support":             "True",
	}, specs.ToMap())
	th.CheckDeepEquals(t, []string{"driver_handles_share_servers", "snapshot_support"}, specs.Keys())

	update := metadata.Map{}
	update.Set("replication_type", "dr")
	th.AssertNoErr(t, backend.SetShareTypeExtraSpecs("type1", update))
	th.AssertNoErr(t, backend.UnsetShareTypeExtraSpec("type1", "snapshot_support"))
}

func TestShareMetadata(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	th.Mux.HandleFunc("/shares/share1/metadata", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			writeJSON(w, http.StatusOK, `{"metadata": {"owner": "alice", "env": "prod"}}`)
		case "POST":
			th.TestJSONRequest(t, r, `{"metadata": {"env": "staging"}}`)
			writeJSON(w, http.StatusOK, `{"metadata": {"owner": "alice", "env": "staging"}}`)
		default:
			t.Errorf("unexpected method: %s", r.Method)
		}
	})
	th.Mux.HandleFunc("/shares/share1/metadata/owner", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "DELETE")
		w.WriteHeader(http.StatusOK)
	})

	backend := NewGophercloudBackend(fake.ServiceClient())
	md, err := backend.GetShareMetadata("share1")
	th.AssertNoErr(t, err)
	th.CheckDeepEquals(t, []string{"env", "owner"}, md.Keys())

	update := metadata.Map{}
	update.Set("env", "staging")
	th.AssertNoErr(t, backend.SetShareMetadata("share1", update))
	th.AssertNoErr(t, backend.UnsetShareMetadatum("share1", "owner"))
}

func TestShareMetadataNotFound(t *testing.T) {
	th.SetupHTTP()
	defer th.TeardownHTTP()

	th.Mux.HandleFunc("/shares/missing/metadata", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"itemNotFound": {"code": 404, "message": "Share missing could not be found."}}`)
	})

	counter := backendErrorsCounter.WithLabelValues("get_share_metadata")
	before := testutil.ToFloat64(counter)

	backend := NewGophercloudBackend(fake.ServiceClient())
	_, err := backend.GetShareMetadata("missing")
	if err == nil {
		t.Fatal("expected GetShareMetadata to fail")
	}
	th.CheckEquals(t, true, util.IsNotFound(err))
	th.CheckEquals(t, before+1, testutil.ToFloat64(counter))
}
