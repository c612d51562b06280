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

package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sapcc/go-bits/assert"
)

type failingRoundTripper struct{}

func (failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestLoggingRoundTripper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	//with a zero threshold, every call counts as slow, which exercises the log line
	oldThreshold := SlowRequestThreshold
	SlowRequestThreshold = 0
	defer func() { SlowRequestThreshold = oldThreshold }()

	client := &http.Client{Transport: LoggingRoundTripper{Inner: server.Client().Transport}}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatal(err.Error())
	}
	resp.Body.Close()
	assert.DeepEqual(t, "status code", resp.StatusCode, http.StatusTeapot)

	client = &http.Client{Transport: LoggingRoundTripper{Inner: failingRoundTripper{}}}
	_, err = client.Get(server.URL)
	if err == nil {
		t.Error("expected request to fail")
	}
}
