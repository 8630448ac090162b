// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fieldcheck verifies that a JSON object string carries a set of
// required top-level keys. It is a bounded scanner, not a JSON parser: values
// are skipped rather than decoded and nested objects are never entered.
package fieldcheck

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMalformedInput is returned when the payload does not have the shape
	// the scanner expects
	ErrMalformedInput = errors.New("malformed input")
	// ErrNestedObject is returned when a nested object is reached before all
	// required fields have been seen
	ErrNestedObject = errors.New("reached {")
)

// MissingFieldsError lists the required fields that were not present before
// the enclosing object closed. Fields are sorted in ascending order.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf(
		"missing %d : %s",
		len(e.Fields),
		strings.Join(e.Fields, " "),
	)
}

type scanState int

const (
	stateObjectStart scanState = iota // searching for the opening brace
	stateKeyStart                     // searching for the quote opening a key
	stateKey                          // inside a key
	stateColon                        // searching for the key/value separator
	stateValue                        // searching for a value-start token
	stateString                       // inside a string value
	stateTerminator                   // searching for ',' or '}'
)

// Check scans payload and returns nil once every name in required has been
// seen as a top-level key. Scanning stops as soon as the last required key is
// matched, so anything after it is not inspected.
func Check(required []string, payload string) error {
	pending := make(map[string]bool, len(required))
	for _, name := range required {
		pending[name] = true
	}
	s := scanner{pending: pending, remaining: len(pending)}
	return s.run(payload)
}

type scanner struct {
	pending   map[string]bool
	key       string
	remaining int
}

func (s *scanner) run(payload string) error {
	state := stateObjectStart
	keyStart := 0
	escaped := false
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		switch state {
		case stateObjectStart:
			if c == '{' {
				if s.remaining == 0 {
					return nil
				}
				state = stateKeyStart
			}
		case stateKeyStart:
			if c == '"' {
				keyStart = i + 1
				escaped = false
				state = stateKey
			}
		case stateKey:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				s.key = payload[keyStart:i]
				state = stateColon
			}
		case stateColon:
			if c == ':' {
				state = stateValue
			}
		case stateValue:
			switch c {
			case '{':
				return ErrNestedObject
			case '"':
				escaped = false
				state = stateString
			case ',':
				// Scalar value, the comma doubles as the terminator
				if s.mark() {
					return nil
				}
				state = stateKeyStart
			case '}':
				if s.mark() {
					return nil
				}
				return s.missing()
			}
		case stateString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				if s.mark() {
					return nil
				}
				state = stateTerminator
			}
		case stateTerminator:
			switch c {
			case ',':
				state = stateKeyStart
			case '}':
				return s.missing()
			}
		}
	}
	return malformed(state)
}

// mark records the current key and reports whether every required field has
// now been seen
func (s *scanner) mark() bool {
	if s.pending[s.key] {
		s.pending[s.key] = false
		s.remaining--
	}
	return s.remaining == 0
}

func (s *scanner) missing() error {
	fields := make([]string, 0, s.remaining)
	for name, pending := range s.pending {
		if pending {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return &MissingFieldsError{Fields: fields}
}

func malformed(state scanState) error {
	var detail string
	switch state {
	case stateObjectStart:
		detail = "no open brace"
	case stateKeyStart:
		detail = `expected "`
	case stateKey:
		detail = "unterminated key"
	case stateColon:
		detail = "expected :"
	case stateValue:
		detail = "expected value"
	case stateString:
		detail = "unterminated string"
	default:
		detail = "expected , or }"
	}
	return fmt.Errorf("%w: %s", ErrMalformedInput, detail)
}
