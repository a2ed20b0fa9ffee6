package artifact

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// PropertyType is the kind of value a configuration property accepts.
type PropertyType string

const (
	PropertyTypeString          PropertyType = "string"
	PropertyTypeNumber          PropertyType = "number"
	PropertyTypeBoolean         PropertyType = "boolean"
	PropertyTypeDuration        PropertyType = "duration"
	PropertyTypeTimeZone        PropertyType = "time_zone"
	PropertyTypeDate            PropertyType = "date"
	PropertyTypeDateTime        PropertyType = "date_time"
	PropertyTypeURI             PropertyType = "uri"
	PropertyTypeInternetAddress PropertyType = "internet_address"
	PropertyTypeDataSize        PropertyType = "data_size"
	PropertyTypeMimeType        PropertyType = "mime_type"
	PropertyTypeCharset         PropertyType = "charset"
	PropertyTypeLocale          PropertyType = "locale"
)

var propertyTypes = []PropertyType{
	PropertyTypeString, PropertyTypeNumber, PropertyTypeBoolean, PropertyTypeDuration,
	PropertyTypeTimeZone, PropertyTypeDate, PropertyTypeDateTime, PropertyTypeURI,
	PropertyTypeInternetAddress, PropertyTypeDataSize, PropertyTypeMimeType,
	PropertyTypeCharset, PropertyTypeLocale,
}

func (t PropertyType) Valid() bool {
	return slices.Contains(propertyTypes, t)
}

func (t *PropertyType) UnmarshalText(text []byte) error {
	pt := PropertyType(strings.ToLower(string(text)))
	if !pt.Valid() {
		return fmt.Errorf("unknown property type %q", string(text))
	}
	*t = pt
	return nil
}

// DataType describes the shape of a property value.
type DataType string

const (
	// DataTypeAtomic values are single values such as a string or a number.
	DataTypeAtomic DataType = "atomic"
	// DataTypeCollection values are lists, sets or arrays of atomic values.
	DataTypeCollection DataType = "collection"
	// DataTypeComposite values are maps or nested objects.
	DataTypeComposite DataType = "composite"
)

func (t DataType) Valid() bool {
	switch t {
	case DataTypeAtomic, DataTypeCollection, DataTypeComposite:
		return true
	default:
		return false
	}
}

func (t *DataType) UnmarshalText(text []byte) error {
	dt := DataType(strings.ToLower(string(text)))
	if !dt.Valid() {
		return fmt.Errorf("unknown data type %q", string(text))
	}
	*t = dt
	return nil
}

// Deprecation marks a property as deprecated, optionally naming its replacement.
type Deprecation struct {
	Reason      string `json:"reason,omitempty"`
	Replacement string `json:"replacement,omitempty"`
}

// PropertyDescriptor describes a configuration property declared by an artifact.
type PropertyDescriptor struct {
	Name         string       `json:"name"`
	Type         PropertyType `json:"type"`
	DataType     DataType     `json:"data_type"`
	TypeName     string       `json:"type_name,omitempty"`
	Description  string       `json:"description,omitempty"`
	DefaultValue string       `json:"default_value,omitempty"`
	Hints        []string     `json:"hints"`
	Deprecation  *Deprecation `json:"deprecation,omitempty"`
}

// NewPropertyDescriptor creates a string typed atomic property.
func NewPropertyDescriptor(name string) PropertyDescriptor {
	return PropertyDescriptor{
		Name:     name,
		Type:     PropertyTypeString,
		DataType: DataTypeAtomic,
		Hints:    []string{},
	}
}

// AddHint appends a value hint. Blank hints are ignored.
func (p *PropertyDescriptor) AddHint(hints ...string) {
	for _, hint := range hints {
		if strings.TrimSpace(hint) != "" {
			p.Hints = append(p.Hints, hint)
		}
	}
}

func (p PropertyDescriptor) Deprecated() bool {
	return p.Deprecation != nil
}

func (p PropertyDescriptor) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("property name must not be blank")
	}
	if !p.Type.Valid() {
		return fmt.Errorf("property %q has unknown type %q", p.Name, p.Type)
	}
	if !p.DataType.Valid() {
		return fmt.Errorf("property %q has unknown data type %q", p.Name, p.DataType)
	}
	return nil
}

// CompareProperties orders property descriptors by name.
func CompareProperties(a, b PropertyDescriptor) int {
	return cmp.Compare(a.Name, b.Name)
}

// EncodeProperties writes the descriptors as a JSON list sorted by name.
func EncodeProperties(properties []PropertyDescriptor) ([]byte, error) {
	sorted := make([]PropertyDescriptor, len(properties))
	for i, p := range properties {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if p.Hints == nil {
			p.Hints = []string{}
		}
		sorted[i] = p
	}
	slices.SortStableFunc(sorted, CompareProperties)
	return json.Marshal(sorted)
}

// DecodeProperties reads a JSON list of descriptors written by EncodeProperties.
// Unknown fields are rejected.
func DecodeProperties(data []byte) ([]PropertyDescriptor, error) {
	return ReadProperties(bytes.NewReader(data))
}

// ReadProperties is like DecodeProperties but reads from r.
func ReadProperties(r io.Reader) ([]PropertyDescriptor, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var properties []PropertyDescriptor
	if err := decoder.Decode(&properties); err != nil {
		return nil, fmt.Errorf("failed to decode property descriptors: %w", err)
	}
	for i := range properties {
		p := &properties[i]
		if p.Type == "" {
			p.Type = PropertyTypeString
		}
		if p.DataType == "" {
			p.DataType = DataTypeAtomic
		}
		if p.Hints == nil {
			p.Hints = []string{}
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid property descriptor at index %d: %w", i, err)
		}
	}
	return properties, nil
}
