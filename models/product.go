package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// AttributeKind is the storage type of a product attribute column
type AttributeKind string

const (
	KindNumber AttributeKind = "number"
	KindText   AttributeKind = "text"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether name can be used unquoted-safe as a table or column name
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Attribute is a nullable scalar column on the product table
type Attribute struct {
	Name string        `json:"name" yaml:"name"`
	Kind AttributeKind `json:"kind" yaml:"kind"`
}

// Validate checks the attribute name and kind
func (a Attribute) Validate() error {
	if !ValidIdentifier(a.Name) {
		return fmt.Errorf("invalid attribute name %q", a.Name)
	}
	if a.Kind != KindNumber && a.Kind != KindText {
		return fmt.Errorf("invalid attribute kind %q for %s", a.Kind, a.Name)
	}
	return nil
}

// NumberAttribute returns a numeric attribute
func NumberAttribute(name string) Attribute {
	return Attribute{Name: name, Kind: KindNumber}
}

// TextAttribute returns a text attribute
func TextAttribute(name string) Attribute {
	return Attribute{Name: name, Kind: KindText}
}

// Value is a single attribute value or an explicit absence.
// Absence is distinct from zero and from the empty string.
type Value struct {
	Kind  AttributeKind
	Num   float64
	Text  string
	Valid bool
}

// Absent returns the "no data" value
func Absent() Value {
	return Value{}
}

// Number wraps a numeric value
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f, Valid: true}
}

// Text wraps a text value
func Text(s string) Value {
	return Value{Kind: KindText, Text: s, Valid: true}
}

// Arg returns the value as a database/sql argument, nil when absent
func (v Value) Arg() interface{} {
	if !v.Valid {
		return nil
	}
	if v.Kind == KindNumber {
		return v.Num
	}
	return v.Text
}

func (v Value) String() string {
	if !v.Valid {
		return "no data"
	}
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Num, 'f', 2, 64)
	}
	return v.Text
}

// Field pairs an attribute with the value to write into it
type Field struct {
	Attribute Attribute
	Value     Value
}

// Product is one catalog row. Attribute values are float64, string or nil.
type Product struct {
	Name       string                 `json:"name"`
	Attributes map[string]interface{} `json:"attributes"`
}

// Has returns true if the attribute is present and not NULL
func (p *Product) Has(attribute string) bool {
	v, ok := p.Attributes[attribute]
	return ok && v != nil
}
