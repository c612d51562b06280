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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/cors"
	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/httpext"
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/osext"

	"github.com/sapcc/manila-ui/pkg/api"
	"github.com/sapcc/manila-ui/pkg/core"
	"github.com/sapcc/manila-ui/pkg/keystone"
	"github.com/sapcc/manila-ui/pkg/manila"
	"github.com/sapcc/manila-ui/pkg/metadata"
)

func main() {
	logg.ShowDebug = osext.GetenvBool("MANILA_UI_DEBUG")

	//first two arguments must be task name and configuration file
	if len(os.Args) < 3 {
		printUsageAndExit()
	}
	taskName, configPath, remainingArgs := os.Args[1], os.Args[2], os.Args[3:]

	//load configuration
	config := core.NewConfiguration(configPath)

	//select task
	var task func(core.Configuration, []string) error
	switch taskName {
	case "serve":
		task = taskServe
	case "test-get-quota":
		task = taskTestGetQuota
	case "test-parse-metadata":
		task = taskTestParseMetadata
	default:
		printUsageAndExit()
	}

	//run task
	err := task(config, remainingArgs)
	if err != nil {
		logg.Fatal(err.Error())
	}
}

var usageMessage = strings.ReplaceAll(strings.TrimSpace(`
Usage:
\t%s serve <config-file>
\t%s test-get-quota <config-file> <project-id>
\t%s test-parse-metadata <config-file> <input-file>
`), `\t`, "\t") + "\n"

func printUsageAndExit() {
	fmt.Fprintln(os.Stderr, strings.ReplaceAll(usageMessage, "%s", os.Args[0]))
	os.Exit(1)
}

func connect(config core.Configuration) *core.AuthParameters {
	auth := &core.AuthParameters{}
	err := auth.Connect(config)
	if err != nil {
		logg.Fatal(err.Error())
	}
	return auth
}

func usageFeatures(config core.Configuration) manila.Features {
	return manila.Features{
		ShareGroups:   config.Manila.Features.ShareGroups,
		ShareReplicas: config.Manila.Features.ShareReplicas,
	}
}

////////////////////////////////////////////////////////////////////////////////
// task: serve

func taskServe(config core.Configuration, args []string) error {
	if len(args) != 0 {
		printUsageAndExit()
	}

	auth := connect(config)
	backend := manila.NewGophercloudBackend(auth.ManilaV2)
	projectCache := keystone.NewProjectNameCache(keystone.GophercloudLister{IdentityV3: auth.IdentityV3})

	//wire up HTTP handlers
	handler := httpapi.Compose(
		api.NewV1API(config, backend, projectCache, auth.TokenValidator, time.Now),
	)
	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	var topHandler http.Handler = mux

	//add CORS support
	allowedOriginStr := strings.ReplaceAll(os.Getenv("MANILA_UI_API_CORS_ALLOWED_ORIGINS"), " ", "")
	if allowedOriginStr != "" {
		topHandler = cors.New(cors.Options{
			AllowedOrigins: strings.Split(allowedOriginStr, "||"),
			AllowedMethods: []string{"HEAD", "GET", "POST", "PUT"},
			AllowedHeaders: []string{"Content-Type", "User-Agent", "X-Auth-Token"},
		}).Handler(topHandler)
	}

	//start HTTP server
	apiListenAddr := osext.GetenvOrDefault("MANILA_UI_API_LISTEN_ADDRESS", ":80")
	logg.Info("listening on " + apiListenAddr)
	ctx := httpext.ContextWithSIGINT(context.Background(), 10*time.Second)
	return httpext.ListenAndServeContext(ctx, apiListenAddr, topHandler)
}

////////////////////////////////////////////////////////////////////////////////
// tasks: test backend connection and parser

func taskTestGetQuota(config core.Configuration, args []string) error {
	if len(args) != 1 {
		printUsageAndExit()
	}
	projectID := args[0]

	auth := connect(config)
	backend := manila.NewGophercloudBackend(auth.ManilaV2)
	usage, err := manila.GetQuotaUsage(backend, projectID, usageFeatures(config))
	if err != nil {
		return err
	}

	for _, name := range usage.Names() {
		u := usage[name]
		logg.Debug("%s: used %d of %s, remaining %s", name, u.Used, u.Limit.String(), u.Remaining().String())
	}
	dumpGeneratedPrometheusMetrics()
	return dumpJSON(usage)
}

func taskTestParseMetadata(config core.Configuration, args []string) error {
	if len(args) != 1 {
		printUsageAndExit()
	}

	buf, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	result, err := metadata.Parse(string(buf))
	if err != nil {
		return err
	}
	logg.Info("preview as shown in tables:\n%s",
		metadata.StringifyTruncated(result.Set, config.Display.VisibleItems, config.Display.TextWidth))
	return dumpJSON(result)
}

//dumpGeneratedPrometheusMetrics shows the backend error counters on stderr, so
//that failed calls are visible even if the task as a whole succeeds.
func dumpGeneratedPrometheusMetrics() {
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		if merr, ok := err.(prometheus.MultiError); ok {
			for _, err := range merr {
				logg.Error("error while gathering Prometheus metrics: " + err.Error())
			}
		} else {
			logg.Error("error while gathering Prometheus metrics: " + err.Error())
		}
	}

	for _, metricFamily := range metricFamilies {
		//skip metrics generated by prometheus/client-golang and go-bits/httpapi
		if !strings.HasPrefix(metricFamily.GetName(), "manila_ui_") {
			continue
		}
		_, err := expfmt.MetricFamilyToText(os.Stderr, metricFamily)
		if err != nil {
			logg.Error("cannot print metric family %s: %s", metricFamily.GetName(), err.Error())
		}
	}
}

func dumpJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
