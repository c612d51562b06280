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

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFieldLength is the maximum length (in characters) of a key or value. This
// matches the column width that Manila uses for metadata and extra specs.
const MaxFieldLength = 255

// ParseResult is the result of Parse(). A key appears in at most one of Set
// and Unset.
type ParseResult struct {
	//Set contains the entries from all "key=value" lines.
	Set Map `json:"set"`
	//Unset contains the keys from all lines without "=", i.e. keys that the
	//user wants to have removed.
	Unset []string `json:"unset"`
}

// FormatError is returned by Parse() when the input text cannot be converted
// into a ParseResult.
type FormatError struct {
	//Line is the 1-based number of the offending line, or 0 if the error does
	//not relate to a single line.
	Line   int
	Reason string
}

// Error implements the builtin/error interface.
func (e *FormatError) Error() string {
	if e.Line == 0 {
		return "malformed metadata: " + e.Reason
	}
	return fmt.Sprintf("malformed metadata in line %d: %s", e.Line, e.Reason)
}

// IsFormatError returns whether the given error is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var ferr *FormatError
	return errors.As(err, &ferr)
}

// Parse converts a block of text into a ParseResult. Each non-blank line is
// either "key=value" (split on the first "=", so the value may contain further
// "=" characters) or a bare key that shall be unset. Whitespace and quote
// characters are trimmed from both ends of keys and values, so a line without
// "=" that consists only of quotes counts as blank. When a key is set
// multiple times, the last value wins.
func Parse(text string) (ParseResult, error) {
	result := ParseResult{Unset: []string{}}
	unsetLine := make(map[string]int)

	for idx, line := range splitLines(text) {
		lineNumber := idx + 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, value, hasValue := strings.Cut(line, "=")
		key = trimField(key)
		if key == "" && !hasValue {
			continue
		}
		err := validateKey(key)
		if err != nil {
			return ParseResult{}, &FormatError{Line: lineNumber, Reason: err.Error()}
		}

		if !hasValue {
			if _, exists := unsetLine[key]; !exists {
				unsetLine[key] = lineNumber
				result.Unset = append(result.Unset, key)
			}
			continue
		}

		value = trimField(value)
		if utf8.RuneCountInString(value) > MaxFieldLength {
			return ParseResult{}, &FormatError{Line: lineNumber, Reason: fmt.Sprintf("value for key %q is longer than %d characters", key, MaxFieldLength)}
		}
		result.Set.Set(key, value)
	}

	for _, key := range result.Unset {
		if result.Set.Has(key) {
			return ParseResult{}, &FormatError{
				Line:   unsetLine[key],
				Reason: fmt.Sprintf("key %q cannot be set and unset at the same time", key),
			}
		}
	}

	return result, nil
}

func trimField(field string) string {
	return strings.TrimFunc(field, func(r rune) bool {
		return r == '"' || r == '\'' || unicode.IsSpace(r)
	})
}

func validateKey(key string) error {
	switch {
	case key == "":
		return errors.New("key may not be empty")
	case utf8.RuneCountInString(key) > MaxFieldLength:
		return fmt.Errorf("key is longer than %d characters", MaxFieldLength)
	case strings.IndexFunc(key, unicode.IsSpace) >= 0:
		return fmt.Errorf("key %q may not contain whitespace", key)
	default:
		return nil
	}
}

// splitLines splits on "\r\n", "\n" and "\r" alike. Browsers submit textareas
// with "\r\n", but API clients tend to send "\n".
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
