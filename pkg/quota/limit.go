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

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// UnlimitedSentinel is the value that Manila puts on the wire for "no limit".
const UnlimitedSentinel int64 = -1

// Limit is either a finite quota value or Unlimited. The zero value is a
// finite limit of 0.
type Limit struct {
	value     int64
	unlimited bool
}

// Unlimited is the Limit that does not restrict anything.
var Unlimited = Limit{unlimited: true}

// LimitOf converts a value from the Manila API into a Limit, mapping the
// UnlimitedSentinel to Unlimited.
func LimitOf(value int64) Limit {
	if value == UnlimitedSentinel {
		return Unlimited
	}
	return Limit{value: value}
}

// IsUnlimited returns whether this is the Unlimited limit.
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Value returns the numeric value. The second return value is false for
// Unlimited.
func (l Limit) Value() (int64, bool) {
	return l.value, !l.unlimited
}

// Float returns the limit as a float64, with Unlimited being +Inf. This is the
// representation used for percentages in usage charts.
func (l Limit) Float() float64 {
	if l.unlimited {
		return math.Inf(+1)
	}
	return float64(l.value)
}

// ToWire converts back into the representation used by the Manila API.
func (l Limit) ToWire() int64 {
	if l.unlimited {
		return UnlimitedSentinel
	}
	return l.value
}

// String implements the fmt.Stringer interface.
func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return strconv.FormatInt(l.value, 10)
}

// MarshalJSON implements the json.Marshaler interface. Unlimited is encoded as
// the string "unlimited", everything else as a number.
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.FormatInt(l.value, 10)), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. It accepts the
// output of MarshalJSON as well as the wire sentinel.
func (l *Limit) UnmarshalJSON(buf []byte) error {
	if string(buf) == `"unlimited"` {
		*l = Unlimited
		return nil
	}
	var value int64
	err := json.Unmarshal(buf, &value)
	if err != nil {
		return fmt.Errorf("invalid quota limit %s: %w", string(buf), err)
	}
	*l = LimitOf(value)
	return nil
}
