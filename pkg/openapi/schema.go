package openapi

import (
	"encoding"
	"fmt"
	"path"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	timeType        = reflect.TypeOf(time.Time{})
	durationType    = reflect.TypeOf(time.Duration(0))
	uuidType        = reflect.TypeOf(uuid.UUID{})
	textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// schemaBuilder accumulates named component schemas while describing
// request types, deduplicating by Go type.
type schemaBuilder struct {
	schemas map[string]*Schema
	names   map[reflect.Type]string
}

func newSchemaBuilder() *schemaBuilder {
	return &schemaBuilder{
		schemas: map[string]*Schema{},
		names:   map[reflect.Type]string{},
	}
}

// tagDirective is a parsed binding tag: a source name plus the required
// option. The grammar matches what binding evaluates at request time.
type tagDirective struct {
	name     string
	required bool
	ok       bool
}

func parseTag(tag string) tagDirective {
	if tag == "" || tag == "-" {
		return tagDirective{}
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		return tagDirective{}
	}
	return tagDirective{
		name:     name,
		required: strings.Contains(","+opts+",", ",required,"),
		ok:       true,
	}
}

// requestParts splits a request model into parameter objects and a body
// schema, honoring the binding precedence: a field is documented at the
// first client-visible source that can populate it. Claim-bound fields
// come from the principal and are not documented at all.
func (sb *schemaBuilder) requestParts(t reflect.Type) ([]Parameter, *Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("request type %s is not a struct", t)
	}

	var params []Parameter
	body := &Schema{Type: "object", Properties: map[string]*Schema{}}
	if err := sb.collectFields(t, &params, body); err != nil {
		return nil, nil, err
	}
	if len(body.Properties) == 0 {
		body = nil
	}
	return params, body, nil
}

func (sb *schemaBuilder) collectFields(t reflect.Type, params *[]Parameter, body *Schema) error {
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if err := sb.collectFields(sf.Type, params, body); err != nil {
				return err
			}
			continue
		}
		if parseTag(sf.Tag.Get("claim")).ok {
			continue
		}

		fs, err := sb.schemaOf(sf.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", sf.Name, err)
		}
		required := applyValidateRules(fs, sf)
		if def, ok := sf.Tag.Lookup("default"); ok {
			fs.Default = coerceDefault(def, sf.Type)
		}

		if d := parseTag(sf.Tag.Get("header")); d.ok {
			*params = append(*params, Parameter{Name: d.name, In: "header", Required: d.required || required, Schema: fs})
			continue
		}
		if d := parseTag(sf.Tag.Get("param")); d.ok {
			*params = append(*params, Parameter{Name: d.name, In: "path", Required: true, Schema: fs})
			continue
		}
		if d := parseTag(sf.Tag.Get("json")); d.ok {
			body.Properties[d.name] = fs
			if d.required || required {
				body.Required = append(body.Required, d.name)
			}
			continue
		}
		if d := parseTag(sf.Tag.Get("form")); d.ok {
			body.Properties[d.name] = fs
			if d.required || required {
				body.Required = append(body.Required, d.name)
			}
			continue
		}
		if d := parseTag(sf.Tag.Get("query")); d.ok {
			*params = append(*params, Parameter{Name: d.name, In: "query", Required: d.required || required, Schema: fs})
			continue
		}
		if sf.Tag.Get("json") == "-" || sf.Tag.Get("form") == "-" {
			continue
		}

		// No directive: the JSON body can still provide the field by name.
		name := lowerCamel(sf.Name)
		body.Properties[name] = fs
		if required {
			body.Required = append(body.Required, name)
		}
	}
	return nil
}

// schemaOf maps a Go type to its schema. Named struct types become
// component references; everything else is described inline.
func (sb *schemaBuilder) schemaOf(t reflect.Type) (*Schema, error) {
	switch t {
	case timeType:
		return &Schema{Type: "string", Format: "date-time"}, nil
	case durationType:
		return &Schema{Type: "string", Format: "duration"}, nil
	case uuidType:
		return &Schema{Type: "string", Format: "uuid"}, nil
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshaler) {
		return &Schema{Type: "string"}, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return sb.schemaOf(t.Elem())
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return &Schema{Type: "integer", Format: "int32"}, nil
	case reflect.Int, reflect.Int64:
		return &Schema{Type: "integer", Format: "int64"}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer", Minimum: float64Ptr(0)}, nil
	case reflect.Float32:
		return &Schema{Type: "number", Format: "float"}, nil
	case reflect.Float64:
		return &Schema{Type: "number", Format: "double"}, nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "byte"}, nil
		}
		items, err := sb.schemaOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keyed by %s cannot be documented", t.Key())
		}
		values, err := sb.schemaOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Struct:
		if t.Name() == "" {
			return sb.objectSchema(t)
		}
		return sb.refFor(t)
	case reflect.Interface:
		return &Schema{}, nil
	default:
		return nil, fmt.Errorf("%s cannot be documented", t)
	}
}

// objectSchema describes a struct used inside a body: properties take
// their json names, embedded structs flatten into the parent.
func (sb *schemaBuilder) objectSchema(t reflect.Type) (*Schema, error) {
	s := &Schema{Type: "object", Properties: map[string]*Schema{}}
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			embedded, err := sb.objectSchema(sf.Type)
			if err != nil {
				return nil, err
			}
			for name, prop := range embedded.Properties {
				s.Properties[name] = prop
			}
			s.Required = append(s.Required, embedded.Required...)
			continue
		}
		if sf.Tag.Get("json") == "-" {
			continue
		}

		name := lowerCamel(sf.Name)
		if d := parseTag(sf.Tag.Get("json")); d.ok {
			name = d.name
		}
		prop, err := sb.schemaOf(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		if applyValidateRules(prop, sf) {
			s.Required = append(s.Required, name)
		}
		if def, ok := sf.Tag.Lookup("default"); ok {
			prop.Default = coerceDefault(def, sf.Type)
		}
		s.Properties[name] = prop
	}
	return s, nil
}

// refFor registers a named struct under components/schemas and returns a
// reference to it. The name is claimed before descending into fields so
// self-referential types terminate.
func (sb *schemaBuilder) refFor(t reflect.Type) (*Schema, error) {
	if name, ok := sb.names[t]; ok {
		return &Schema{Ref: componentRef(name)}, nil
	}
	name := sb.uniqueName(t)
	sb.names[t] = name
	placeholder := &Schema{}
	sb.schemas[name] = placeholder

	obj, err := sb.objectSchema(t)
	if err != nil {
		return nil, err
	}
	*placeholder = *obj
	return &Schema{Ref: componentRef(name)}, nil
}

func componentRef(name string) string {
	return "#/components/schemas/" + name
}

// uniqueName picks a component name for t: the bare type name when free,
// qualified by package when another type already claimed it.
func (sb *schemaBuilder) uniqueName(t reflect.Type) string {
	name := t.Name()
	if _, taken := sb.schemas[name]; !taken {
		return name
	}
	if pkg := path.Base(t.PkgPath()); pkg != "" && pkg != "." {
		qualified := pkg + "." + name
		if _, taken := sb.schemas[qualified]; !taken {
			return qualified
		}
		name = qualified
	}
	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if _, taken := sb.schemas[candidate]; !taken {
			return candidate
		}
	}
}

// applyValidateRules mirrors the validate tag grammar onto the schema so
// documented constraints match what validation enforces. It reports
// whether the field carries a required rule; the caller decides which
// required list that lands in.
func applyValidateRules(s *Schema, sf reflect.StructField) bool {
	tag := sf.Tag.Get("validate")
	if tag == "" || tag == "-" {
		return false
	}

	required := false
	for _, rule := range strings.Split(tag, ";") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		name, param, _ := strings.Cut(rule, ":")
		switch name {
		case "required":
			required = true
		case "min":
			if n, err := strconv.Atoi(param); err == nil {
				setBound(s, n, true)
			}
		case "max":
			if n, err := strconv.Atoi(param); err == nil {
				setBound(s, n, false)
			}
		case "len":
			if n, err := strconv.Atoi(param); err == nil {
				setBound(s, n, true)
				setBound(s, n, false)
			}
		case "email":
			if s.Type == "string" && s.Format == "" {
				s.Format = "email"
			}
		case "oneof":
			if s.Type == "string" {
				s.Enum = strings.Split(param, "|")
			}
		}
	}
	return required
}

// setBound applies a min or max rule the way the validator interprets it:
// character count for strings, item count for arrays, value for numbers.
func setBound(s *Schema, n int, isMin bool) {
	switch s.Type {
	case "string":
		if isMin {
			s.MinLength = &n
		} else {
			s.MaxLength = &n
		}
	case "array":
		if isMin {
			s.MinItems = &n
		} else {
			s.MaxItems = &n
		}
	case "integer", "number":
		f := float64(n)
		if isMin {
			s.Minimum = &f
		} else {
			s.Maximum = &f
		}
	}
}

// coerceDefault converts a default tag value to the documented type so
// the schema default carries the right JSON kind. Unparseable values
// fall back to the raw string.
func coerceDefault(raw string, t reflect.Type) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == durationType || t == timeType {
		return raw
	}
	switch t.Kind() {
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func float64Ptr(f float64) *float64 {
	return &f
}

func lowerCamel(name string) string {
	return strings.ToLower(name[:1]) + name[1:]
}
