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

	"github.com/gophercloud/gophercloud"
)

// responseExtractor finds one of the gophercloud.ErrDefaultXXX types in an
// error chain and returns the ErrUnexpectedResponseCode inside it.
type responseExtractor func(error) (gophercloud.ErrUnexpectedResponseCode, bool)

func extractFrom[E error](inner func(E) gophercloud.ErrUnexpectedResponseCode) responseExtractor {
	return func(err error) (gophercloud.ErrUnexpectedResponseCode, bool) {
		var target E
		if errors.As(err, &target) {
			return inner(target), true
		}
		return gophercloud.ErrUnexpectedResponseCode{}, false
	}
}

//The ErrDefaultXXX types embed ErrUnexpectedResponseCode, but do not expose it
//through Unwrap(), so errors.As() needs to be told about each of them.
var responseExtractors = []responseExtractor{
	extractFrom(func(e gophercloud.ErrDefault400) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrDefault401) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrDefault403) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrDefault404) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrDefault405) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrDefault408) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrDefault429) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrDefault500) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrDefault503) gophercloud.ErrUnexpectedResponseCode { return e.ErrUnexpectedResponseCode }),
	extractFrom(func(e gophercloud.ErrUnexpectedResponseCode) gophercloud.ErrUnexpectedResponseCode { return e }),
}

// UnpackError returns the ErrUnexpectedResponseCode hidden inside a
// Gophercloud error (even when wrapped), since that one carries the URL and
// response body. Other errors are returned unchanged.
func UnpackError(err error) error {
	if err == nil {
		return nil
	}
	for _, extract := range responseExtractors {
		if inner, ok := extract(err); ok {
			return inner
		}
	}
	return err
}

// StatusCodeOf returns the HTTP status code that a backend API responded with,
// or 0 if the error did not come from an unexpected API response.
func StatusCodeOf(err error) int {
	var uerr gophercloud.ErrUnexpectedResponseCode
	if errors.As(UnpackError(err), &uerr) {
		return uerr.Actual
	}
	return 0
}

// IsNotFound returns whether the backend API responded with 404.
func IsNotFound(err error) bool {
	return StatusCodeOf(err) == http.StatusNotFound
}
