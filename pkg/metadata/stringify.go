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

package metadata

import "strings"

const (
	// DefaultVisibleItems is how many entries StringifyTruncated() shows in a
	// table cell unless configured otherwise.
	DefaultVisibleItems = 4
	// DefaultTextWidth is how many characters of each key and value
	// StringifyTruncated() shows unless configured otherwise.
	DefaultTextWidth = 25

	lineSeparator  = "\r\n"
	ellipsisMarker = "..."
)

// Stringify renders a Map into the text format understood by Parse(), one
// "key=value" line per entry in insertion order. This is what edit forms are
// prefilled with. Entries containing a line break cannot be expressed in this
// format and are left out (see OmittedFromText). Since Reconcile() only
// touches keys that are mentioned in the text, submitting the text unchanged
// leaves these entries alone.
func Stringify(m Map) string {
	var sb strings.Builder
	m.Each(func(key, value string) {
		if hasLineBreak(key) || hasLineBreak(value) {
			return
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(value)
		sb.WriteString(lineSeparator)
	})
	return sb.String()
}

// OmittedFromText returns the keys of all entries that Stringify() leaves out.
func OmittedFromText(m Map) []string {
	result := []string{}
	m.Each(func(key, value string) {
		if hasLineBreak(key) || hasLineBreak(value) {
			result = append(result, key)
		}
	})
	return result
}

// StringifyTruncated works like Stringify, but emits at most `maxItems`
// entries and shortens each key and value to at most `maxWidth` characters
// (plus an ellipsis marker if something was cut off). If entries were left
// out, a final line with only the ellipsis marker is added. Line breaks inside
// keys and values are shown as spaces. This is used for compact display in
// table cells.
func StringifyTruncated(m Map, maxItems, maxWidth int) string {
	var sb strings.Builder
	count := 0
	m.Each(func(key, value string) {
		count++
		if count > maxItems {
			return
		}
		sb.WriteString(truncate(flattenLines(key), maxWidth))
		sb.WriteByte('=')
		sb.WriteString(truncate(flattenLines(value), maxWidth))
		sb.WriteString(lineSeparator)
	})
	if count > maxItems && maxItems > 0 {
		sb.WriteString(ellipsisMarker)
		sb.WriteString(lineSeparator)
	}
	return sb.String()
}

func hasLineBreak(text string) bool {
	return strings.ContainsAny(text, "\r\n")
}

func flattenLines(text string) string {
	return strings.Join(splitLines(text), " ")
}

func truncate(text string, maxWidth int) string {
	runes := []rune(text)
	if maxWidth < 0 || len(runes) <= maxWidth {
		return text
	}
	return string(runes[:maxWidth]) + ellipsisMarker
}
