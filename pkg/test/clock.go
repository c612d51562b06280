/*******************************************************************************
*
* Copyright 2017-2022 SAP SE
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

package test

import "time"

//Clock replaces time.Now in unit tests. It starts at the UNIX epoch and only
//advances when told to, so that cache expiry can be tested reproducibly.
type Clock struct {
	current time.Time
}

//NewClock creates a Clock that is set to the UNIX epoch.
func NewClock() *Clock {
	return &Clock{current: time.Unix(0, 0).UTC()}
}

//Now returns the current simulated time. Its signature matches time.Now, so
//that `clock.Now` can be given wherever a `func() time.Time` is expected.
func (c *Clock) Now() time.Time {
	return c.current
}

//StepBy advances the clock by the given duration.
func (c *Clock) StepBy(d time.Duration) {
	c.current = c.current.Add(d)
}
