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

// Package metadata contains the conversions between the free-text "key=value"
// blocks that users edit and the key-value mappings that Manila stores as share
// metadata, share type extra specs and share group type group specs.
package metadata

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Map is a string-to-string mapping that remembers insertion order. The zero
// value is an empty map that is ready to use.
type Map struct {
	keys   []string
	values map[string]string
}

// FromMap builds a Map from a plain Go map. Since plain maps have no order, the
// keys are sorted to make rendering deterministic.
func FromMap(in map[string]string) Map {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var m Map
	for _, k := range keys {
		m.Set(k, in[k])
	}
	return m
}

// Set inserts or replaces a value. Replacing keeps the original position.
func (m *Map) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for the given key.
func (m Map) Get(key string) (string, bool) {
	value, ok := m.values[key]
	return value, ok
}

// Has returns whether the key is present.
func (m Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes a key. Deleting a missing key is a no-op.
func (m *Map) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for idx, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Each calls the callback for each entry in insertion order.
func (m Map) Each(callback func(key, value string)) {
	for _, k := range m.keys {
		callback(k, m.values[k])
	}
}

// ToMap converts into a plain Go map, e.g. for passing into API clients.
func (m Map) ToMap() map[string]string {
	result := make(map[string]string, len(m.keys))
	for _, k := range m.keys {
		result[k] = m.values[k]
	}
	return result
}

// MarshalJSON implements the json.Marshaler interface. Entries are written in
// insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, k := range m.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		valueBytes, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. Since encoding/json
// does not expose object order, the result is sorted by key.
func (m *Map) UnmarshalJSON(buf []byte) error {
	var data map[string]string
	err := json.Unmarshal(buf, &data)
	if err != nil {
		return err
	}
	*m = FromMap(data)
	return nil
}
