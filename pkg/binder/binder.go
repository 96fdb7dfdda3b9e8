package binder

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"
)

const maxMultipartMemory = 32 << 20 // 32 MB

// Error is a single failed binding for a single field. Binding collects
// every failure before returning so all problems surface together.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Sources supplies the request data that does not live on *http.Request
// itself: route parameters resolved by the router and claims attached to
// the authenticated principal. Nil funcs mean the source is absent.
type Sources struct {
	Param func(name string) string
	Claim func(name string) (string, bool)
}

// Bind populates v, a pointer to a struct, from r and src. It returns the
// accumulated binding errors; an empty slice means the model is fully bound.
//
// Per field the first populated source wins: claim, header, route parameter,
// body field, query parameter. A field whose chosen source fails coercion is
// reported and skipped; later sources are not consulted for it.
func Bind(r *http.Request, src Sources, v any) []Error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return []Error{{Message: "bind target must be a non-nil struct pointer"}}
	}

	body, errs := decodeBody(r, v)

	b := &binding{
		req:    r,
		src:    src,
		body:   body,
		errors: errs,
	}
	b.bindStruct(rv.Elem())
	return b.errors
}

// bodyData describes what the request body provided: decoded JSON keys or
// parsed form values.
type bodyData struct {
	jsonKeys map[string]struct{}
	form     map[string][]string
}

func (bd *bodyData) hasJSONKey(name string) bool {
	if bd == nil || bd.jsonKeys == nil {
		return false
	}
	if _, ok := bd.jsonKeys[name]; ok {
		return true
	}
	lower := strings.ToLower(name)
	for k := range bd.jsonKeys {
		if strings.ToLower(k) == lower {
			return true
		}
	}
	return false
}

func (bd *bodyData) formValues(name string) ([]string, bool) {
	if bd == nil || bd.form == nil {
		return nil, false
	}
	vals, ok := bd.form[name]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	return vals, true
}

// decodeBody reads the request body once. JSON bodies are decoded straight
// into v (so nested structures bind naturally) while recording which
// top-level keys were present. Form bodies are parsed into a value map and
// applied per field later, honoring source precedence.
func decodeBody(r *http.Request, v any) (*bodyData, []Error) {
	if r.Body == nil {
		return nil, nil
	}

	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return nil, nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil, nil
	}

	switch {
	case mediaType == "application/json":
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, []Error{{Field: "body", Message: "request body could not be read"}}
		}
		if len(strings.TrimSpace(string(raw))) == 0 {
			return nil, nil
		}
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keys); err != nil {
			return nil, []Error{{Field: "body", Message: "request body must be valid JSON"}}
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, []Error{{Field: "body", Message: "request body does not match the expected shape"}}
		}
		present := make(map[string]struct{}, len(keys))
		for k := range keys {
			present[k] = struct{}{}
		}
		return &bodyData{jsonKeys: present}, nil

	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, []Error{{Field: "body", Message: "request body must be a valid form"}}
		}
		return &bodyData{form: r.PostForm}, nil

	case strings.HasPrefix(mediaType, "multipart/"):
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, []Error{{Field: "body", Message: "request body must be a valid multipart form"}}
		}
		form := map[string][]string{}
		if r.MultipartForm != nil {
			for k, vals := range r.MultipartForm.Value {
				form[k] = vals
			}
		}
		return &bodyData{form: form}, nil
	}

	return nil, nil
}

type binding struct {
	req    *http.Request
	src    Sources
	body   *bodyData
	errors []Error
}

func (b *binding) fail(field, message string) {
	b.errors = append(b.errors, Error{Field: field, Message: message})
}

func (b *binding) bindStruct(rv reflect.Value) {
	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)

		if sf.Anonymous && fv.Kind() == reflect.Struct {
			b.bindStruct(fv)
			continue
		}

		b.bindField(sf, fv)
	}
}

type directive struct {
	name     string
	required bool
	ok       bool
}

func parseDirective(tag string) directive {
	if tag == "" || tag == "-" {
		return directive{}
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		return directive{}
	}
	return directive{
		name:     name,
		required: strings.Contains(","+opts+",", ",required,"),
		ok:       true,
	}
}

func (b *binding) bindField(sf reflect.StructField, fv reflect.Value) {
	var (
		claim  = parseDirective(sf.Tag.Get("claim"))
		header = parseDirective(sf.Tag.Get("header"))
		param  = parseDirective(sf.Tag.Get("param"))
		jsonD  = parseDirective(sf.Tag.Get("json"))
		form   = parseDirective(sf.Tag.Get("form"))
		query  = parseDirective(sf.Tag.Get("query"))
	)

	fieldPath := bindFieldName(sf)
	required := claim.required || header.required || param.required || jsonD.required || form.required || query.required

	// Claims and headers are explicit directives and outrank everything.
	if claim.ok && b.src.Claim != nil {
		if val, found := b.src.Claim(claim.name); found && val != "" {
			if err := setFromStrings(fv, []string{val}); err != nil {
				b.fail(fieldPath, err.Error())
			}
			return
		}
	}
	if header.ok {
		if val := b.req.Header.Get(header.name); val != "" {
			if err := setFromStrings(fv, []string{val}); err != nil {
				b.fail(fieldPath, err.Error())
			}
			return
		}
	}
	if param.ok && b.src.Param != nil {
		if val := b.src.Param(param.name); val != "" {
			if err := setFromStrings(fv, []string{val}); err != nil {
				b.fail(fieldPath, err.Error())
			}
			return
		}
	}

	// Body: JSON fields were decoded into the struct already, so presence
	// alone settles the field. Form fields still need coercion.
	if jsonD.ok && b.body.hasJSONKey(jsonD.name) {
		return
	}
	if !jsonD.ok && !sf.Anonymous && b.body.hasJSONKey(sf.Name) {
		return
	}
	if form.ok {
		if vals, found := b.body.formValues(form.name); found {
			if err := setFromStrings(fv, vals); err != nil {
				b.fail(fieldPath, err.Error())
			}
			return
		}
	}

	if query.ok {
		if vals, found := b.req.URL.Query()[query.name]; found && len(vals) > 0 && vals[0] != "" {
			if err := setFromStrings(fv, vals); err != nil {
				b.fail(fieldPath, err.Error())
			}
			return
		}
	}

	// Nothing provided the field: apply the default or report it missing.
	if def, ok := sf.Tag.Lookup("default"); ok {
		if err := setFromStrings(fv, []string{def}); err != nil {
			b.fail(fieldPath, err.Error())
		}
		return
	}
	if required && fv.IsZero() {
		b.fail(fieldPath, "is required")
	}
}

// bindFieldName picks the public name used in binding errors, matching the
// name the client actually sent where possible.
func bindFieldName(sf reflect.StructField) string {
	for _, tag := range []string{"json", "form", "query", "param", "claim", "header"} {
		if d := parseDirective(sf.Tag.Get(tag)); d.ok {
			return d.name
		}
	}
	return strings.ToLower(sf.Name[:1]) + sf.Name[1:]
}
