// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package schema

import (
	"fmt"
	"sort"

	"github.com/dacolabs/records/internal/property"
)

// UnknownFieldWarning is reported for payload keys the collection does not declare.
func UnknownFieldWarning(name string) string {
	return fmt.Sprintf("unknown field %q ignored", name)
}

// EncodeSimple turns a simplified payload into typed form using the
// snapshot's property types. Fields that cannot be written are reported as
// problems; unknown fields are left out and reported as warnings.
func (s *Snapshot) EncodeSimple(payload map[string]any) (typed map[string]any, problems, warnings []string) {
	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	typed = make(map[string]any, len(payload))
	for _, name := range names {
		d, ok := s.Properties[name]
		if !ok {
			warnings = append(warnings, UnknownFieldWarning(name))
			continue
		}
		v, ok := property.Encode(d.Type, payload[name])
		if !ok || d.SystemManaged() {
			problems = append(problems, fmt.Sprintf("field %q (%s) cannot be written", name, d.RemoteType))
			continue
		}
		typed[name] = map[string]any(v)
	}
	return typed, problems, warnings
}
