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

import "github.com/prometheus/client_golang/prometheus"

var backendErrorsCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "manila_ui_backend_errors",
		Help: "Counter for failed calls to the Manila API.",
	},
	[]string{"operation"},
)

func init() {
	prometheus.MustRegister(backendErrorsCounter)
}

func countBackendError(operation string, err error) {
	if err != nil {
		backendErrorsCounter.WithLabelValues(operation).Inc()
	}
}
