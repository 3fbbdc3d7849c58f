// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package property models the typed property values of workspace database records
// and converts them to and from simplified scalars.
package property

// Type identifies the declared type of a collection property.
type Type uint8

// Known property types. TypeUnknown is the default arm for remote types
// that are not modeled yet; their raw name is kept alongside the descriptor.
const (
	TypeUnknown Type = iota
	TypeTitle
	TypeText
	TypeNumber
	TypeSelect
	TypeMultiSelect
	TypeDate
	TypeCheckbox
	TypeURL
	TypeEmail
	TypePhone
	TypeFormula
	TypeRelation
	TypeRollup
	TypeCreatedTime
	TypeCreatedBy
	TypeLastEditedTime
	TypeLastEditedBy
	TypeUniqueID
)

// wireNames maps each known type to the name used by the remote platform.
var wireNames = [...]string{
	TypeUnknown:        "unknown",
	TypeTitle:          "title",
	TypeText:           "rich_text",
	TypeNumber:         "number",
	TypeSelect:         "select",
	TypeMultiSelect:    "multi_select",
	TypeDate:           "date",
	TypeCheckbox:       "checkbox",
	TypeURL:            "url",
	TypeEmail:          "email",
	TypePhone:          "phone_number",
	TypeFormula:        "formula",
	TypeRelation:       "relation",
	TypeRollup:         "rollup",
	TypeCreatedTime:    "created_time",
	TypeCreatedBy:      "created_by",
	TypeLastEditedTime: "last_edited_time",
	TypeLastEditedBy:   "last_edited_by",
	TypeUniqueID:       "unique_id",
}

var descriptions = [...]string{
	TypeTitle:          "Title field",
	TypeText:           "Text field",
	TypeNumber:         "Number field",
	TypeSelect:         "Select field",
	TypeMultiSelect:    "Multi-select field",
	TypeDate:           "Date field",
	TypeCheckbox:       "Checkbox field",
	TypeURL:            "URL field",
	TypeEmail:          "Email field",
	TypePhone:          "Phone number field",
	TypeFormula:        "Formula field",
	TypeRelation:       "Relation field",
	TypeRollup:         "Rollup field",
	TypeCreatedTime:    "Created time",
	TypeCreatedBy:      "Created by",
	TypeLastEditedTime: "Last edited time",
	TypeLastEditedBy:   "Last edited by",
	TypeUniqueID:       "Unique ID",
}

var byWireName = func() map[string]Type {
	m := make(map[string]Type, len(wireNames))
	for t, name := range wireNames {
		if Type(t) != TypeUnknown {
			m[name] = Type(t)
		}
	}
	return m
}()

// ParseType returns the Type for a remote type name, or TypeUnknown.
func ParseType(name string) Type {
	return byWireName[name]
}

// String returns the remote wire name of the type.
func (t Type) String() string {
	if int(t) < len(wireNames) {
		return wireNames[t]
	}
	return wireNames[TypeUnknown]
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to TypeUnknown.
func (t *Type) UnmarshalText(b []byte) error {
	*t = ParseType(string(b))
	return nil
}

// Description returns a human-readable label derived from the type alone.
// remoteName is used for unknown types.
func (t Type) Description(remoteName string) string {
	if t != TypeUnknown && int(t) < len(descriptions) {
		return descriptions[t]
	}
	if remoteName == "" {
		remoteName = wireNames[TypeUnknown]
	}
	return remoteName + " field"
}

// SystemManaged reports whether the platform maintains the value itself.
func (t Type) SystemManaged() bool {
	switch t {
	case TypeCreatedTime, TypeCreatedBy, TypeLastEditedTime, TypeLastEditedBy:
		return true
	}
	return false
}

// Writable reports whether values of this type can be sent on create or update.
func (t Type) Writable() bool {
	switch t {
	case TypeTitle, TypeText, TypeNumber, TypeSelect, TypeMultiSelect, TypeDate,
		TypeCheckbox, TypeURL, TypeEmail, TypePhone, TypeRelation:
		return true
	}
	return false
}

// Sortable reports whether the remote query API can sort on this type.
func (t Type) Sortable() bool {
	switch t {
	case TypeTitle, TypeText, TypeNumber, TypeDate, TypeCreatedTime, TypeLastEditedTime:
		return true
	}
	return false
}
