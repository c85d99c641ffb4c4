package datasvc

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// json mirrors the encoding/json API through jsoniter's
// stdlib-compatible config. All codec work in this package runs
// through it.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// securityField is the metadata key interpreted as a structured
// [Security] descriptor when its shape allows.
const securityField = "security"

// Config identifies which field of a self response names the owning
// user folder. It is supplied by the host or fetched from the config
// endpoint, and is read-only for the lifetime of the client.
type Config struct {
	NamespaceOid       string `json:"namespaceOid" validate:"required"`
	NamespaceUserField string `json:"namespaceUserField" validate:"required"`
}

// Validate checks that the configuration names both namespace fields.
func (cfg Config) Validate() error {
	return Validate(cfg)
}

// SelfResponse is the service's description of the caller. Values maps
// a field name to its ordered values; the client never mutates the map
// after decoding.
type SelfResponse struct {
	Values map[string][]string `json:"values"`
}

// First returns the first value of the named field. It has no side
// effects; a missing or empty field yields an error wrapping
// [ErrFieldMissing] that names the field.
func (sr SelfResponse) First(field string) (string, error) {
	vals, ok := sr.Values[field]
	if !ok || len(vals) == 0 {
		return "", fmt.Errorf("%w: field %q was not returned by the self endpoint", ErrFieldMissing, field)
	}

	return vals[0], nil
}

// GenericResponse pairs a payload with the HTTP status code observed.
// StatusCode is always the actual code received.
type GenericResponse[T any] struct {
	Response   T
	StatusCode int
}

// Header is one key/value pair merged verbatim into every outgoing
// request. The client never inspects header contents.
type Header struct {
	Key   string
	Value string
}

// Security is the structured security descriptor a metadata record may
// carry. The service is free to send an arbitrary mapping instead;
// see [Metadata].
type Security struct {
	Owner       string   `json:"owner,omitempty"`
	Group       string   `json:"group,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Metadata describes a file or folder as understood by the data
// service. All service-defined properties pass through Fields
// untouched; Security is the one interpreted property. A property
// lives either in Fields or in the typed Security view, never both.
//
// On decode, the "security" property is attempted as a structured
// [Security] and moved out of Fields on success. A value of any other
// shape stays raw in Fields with Security left nil; the ambiguity is
// never an error. On encode, Fields is written with null-valued
// properties omitted at every depth, and a non-nil Security is written
// back under "security".
type Metadata struct {
	Security *Security
	Fields   map[string]any
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	m.Fields = fields
	m.Security = nil

	raw, ok := fields[securityField]
	if !ok || raw == nil {
		return nil
	}

	sec, ok := decodeSecurity(raw)
	if !ok {
		return nil
	}

	m.Security = sec
	delete(fields, securityField)

	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.encode())
}

// decodeSecurity round-trips raw through the codec into the structured
// form. Unknown or mismatched fields reject the value, keeping
// free-form mappings intact.
func decodeSecurity(raw any) (*Security, bool) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()

	var sec Security
	if err := dec.Decode(&sec); err != nil {
		return nil, false
	}

	return &sec, true
}

// encode flattens the record into its wire representation.
func (m Metadata) encode() map[string]any {
	out := make(map[string]any, len(m.Fields)+1)
	for k, v := range m.Fields {
		if v == nil {
			continue
		}
		out[k] = dropNulls(v)
	}

	if m.Security != nil {
		if _, exists := out[securityField]; !exists {
			out[securityField] = m.Security
		}
	}

	return out
}

// dropNulls removes null-valued object properties at every depth.
// Array slots are preserved so element positions do not shift.
func dropNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			out[k] = dropNulls(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = dropNulls(item)
		}
		return out
	default:
		return v
	}
}

// marshalMetadataList encodes items the way the write endpoint expects:
// a JSON array with 2-space indentation and null-valued properties
// omitted.
func marshalMetadataList(items []Metadata) ([]byte, error) {
	records := make([]map[string]any, len(items))
	for i, m := range items {
		records[i] = m.encode()
	}

	return json.MarshalIndent(records, "", "  ")
}
