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
	"crypto/tls"
	"net/http"
	"time"

	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/osext"
)

// SlowRequestThreshold is the duration after which a backend API call is
// logged as excessively long.
var SlowRequestThreshold = 10 * time.Second

func init() {
	//allow to disable certificate verification for connecting through a
	//debugging proxy like mitmproxy; this is deliberately not tied to the
	//"DEBUG" variable since that one may reasonably be set in production
	if osext.GetenvBool("MANILA_UI_INSECURE") {
		http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // only for debugging
		}
	}

	http.DefaultTransport = LoggingRoundTripper{http.DefaultTransport}
}

// LoggingRoundTripper adds logging for long round trips to http.RoundTripper.
// This is used to provide visibility into slow Manila and Keystone API calls.
type LoggingRoundTripper struct {
	Inner http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface.
func (rt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.Inner.RoundTrip(req)
	duration := time.Since(start)

	if err == nil && duration > SlowRequestThreshold {
		logg.Info("API call has taken excessively long (%s): %s %s", duration.String(), req.Method, req.URL.String())
	}

	return resp, err
}
