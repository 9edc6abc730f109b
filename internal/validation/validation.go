// Package validation turns raw caller input into typed, checked values.
// Every decode function is pure: it never touches storage and never mutates its input.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"inkpost/internal/models"
)

// Schema names reported in validation errors.
const (
	SchemaPost    = "post"
	SchemaUser    = "user"
	SchemaComment = "comment"
)

// Field limits shared by the schemas.
const (
	MaxTitleLen            = 255
	MaxShortDescriptionLen = 255
	MaxFullNameLen         = 255
)

const (
	msgRequired  = "is required"
	msgNotEmpty  = "must not be empty"
	msgString    = "must be a string"
	msgInteger   = "must be an integer"
	msgIntArray  = "must be an array of integers"
	msgMinOne    = "must be greater than or equal to 1"
	msgForbidden = "must not be set"
)

func msgMaxLen(n int) string {
	return fmt.Sprintf("must be at most %d characters", n)
}

// fieldErrors accumulates failures in the order fields are checked.
type fieldErrors struct {
	list []models.FieldError
	seen map[string]struct{}
}

func (f *fieldErrors) add(path, msg string) {
	if f.seen == nil {
		f.seen = make(map[string]struct{})
	}
	if _, dup := f.seen[path]; dup {
		return
	}
	f.seen[path] = struct{}{}
	f.list = append(f.list, models.FieldError{Path: path, Message: msg})
}

func (f *fieldErrors) has(path string) bool {
	_, ok := f.seen[path]
	return ok
}

func (f *fieldErrors) merge(other []models.FieldError) {
	for _, e := range other {
		f.add(e.Path, e.Message)
	}
}

func (f *fieldErrors) err(schema, branch string) error {
	if len(f.list) == 0 {
		return nil
	}
	return models.NewFieldValidationError(schema, branch, f.list)
}

// object is a decoded JSON object whose members are read one field at a time,
// so a type error on one field does not hide problems on the others.
type object struct {
	members map[string]json.RawMessage
	errs    *fieldErrors
}

func parseObject(raw []byte, errs *fieldErrors) (*object, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		errs.add("", "must be a JSON object")
		return nil, false
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		errs.add("", "malformed JSON: "+err.Error())
		return nil, false
	}
	return &object{members: members, errs: errs}, true
}

// present reports whether key was supplied with a non-null value.
func (o *object) present(key string) bool {
	v, ok := o.members[key]
	return ok && !isNull(v)
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func (o *object) str(key string, required bool) string {
	if !o.present(key) {
		if required {
			o.errs.add(key, msgRequired)
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(o.members[key], &s); err != nil {
		o.errs.add(key, msgString)
		return ""
	}
	return s
}

func (o *object) integer(key string, required bool) (int64, bool) {
	if !o.present(key) {
		if required {
			o.errs.add(key, msgRequired)
		}
		return 0, false
	}
	n, ok := parseInt(o.members[key])
	if !ok {
		o.errs.add(key, msgInteger)
		return 0, false
	}
	return n, true
}

// id reads a positive identifier. Zero and negatives are rejected here.
func (o *object) id(key string, required bool) (uint, bool) {
	n, ok := o.integer(key, required)
	if !ok {
		return 0, false
	}
	if n < 1 {
		o.errs.add(key, msgMinOne)
		return 0, false
	}
	return uint(n), true
}

func (o *object) ids(key string) []uint {
	if !o.present(key) {
		o.errs.add(key, msgRequired)
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(o.members[key], &elems); err != nil {
		o.errs.add(key, msgIntArray)
		return nil
	}
	out := make([]uint, 0, len(elems))
	for i, e := range elems {
		path := fmt.Sprintf("%s[%d]", key, i)
		n, ok := parseInt(e)
		if !ok {
			o.errs.add(path, msgInteger)
			continue
		}
		if n < 1 {
			o.errs.add(path, msgMinOne)
			continue
		}
		out = append(out, uint(n))
	}
	return out
}

func parseInt(raw json.RawMessage) (int64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

// checkText enforces a non-empty string with an optional rune limit (0 = unbounded).
func checkText(errs *fieldErrors, path, value string, maxLen int) {
	if errs.has(path) {
		return
	}
	if value == "" {
		errs.add(path, msgNotEmpty)
		return
	}
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		errs.add(path, msgMaxLen(maxLen))
	}
}

func checkID(errs *fieldErrors, path string, value uint) {
	if errs.has(path) {
		return
	}
	if value < 1 {
		errs.add(path, msgMinOne)
	}
}

func checkIDs(errs *fieldErrors, path string, values []uint) {
	for i, v := range values {
		checkID(errs, fmt.Sprintf("%s[%d]", path, i), v)
	}
}

// resolveMode reads the discriminant and checks it against the allowed branches.
// On failure the returned branch is whatever the caller sent, possibly "".
func resolveMode(o *object, allowed ...string) (string, bool) {
	mode := o.str("mode", false)
	if o.errs.has("mode") {
		return mode, false
	}
	for _, a := range allowed {
		if mode == a {
			return mode, true
		}
	}
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	o.errs.add("mode", "must be one of "+strings.Join(quoted, ", "))
	return mode, false
}
