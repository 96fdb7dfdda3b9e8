package binder

import (
	"encoding"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	timeType        = reflect.TypeOf(time.Time{})
	durationType    = reflect.TypeOf(time.Duration(0))
	textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// setFromStrings coerces raw string values into fv. Scalar fields take the
// first value; slice fields take all of them (single values additionally
// split on commas so claims and route params can carry lists).
func setFromStrings(fv reflect.Value, vals []string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return setFromStrings(fv.Elem(), vals)
	}

	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() != reflect.Uint8 {
		if len(vals) == 1 && strings.Contains(vals[0], ",") {
			vals = strings.Split(vals[0], ",")
			for i := range vals {
				vals[i] = strings.TrimSpace(vals[i])
			}
		}
		out := reflect.MakeSlice(fv.Type(), len(vals), len(vals))
		for i, raw := range vals {
			if err := setScalar(out.Index(i), raw); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	}

	return setScalar(fv, vals[0])
}

func setScalar(fv reflect.Value, raw string) error {
	switch fv.Type() {
	case timeType:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errors.New("must be a valid RFC3339 timestamp")
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	case durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return errors.New("must be a valid duration")
		}
		fv.SetInt(int64(d))
		return nil
	}

	// TextUnmarshaler covers uuid.UUID and friends.
	if fv.CanAddr() && fv.Addr().Type().Implements(textUnmarshaler) {
		if err := fv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return errors.New("has an invalid format")
		}
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("must be a boolean")
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return errors.New("must be an integer")
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return errors.New("must be a non-negative integer")
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return errors.New("must be a number")
		}
		fv.SetFloat(f)
	default:
		return errors.New("has an unsupported type")
	}
	return nil
}
