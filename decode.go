package conflayer

import (
	"encoding"
	"errors"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
var timeDurationType = reflect.TypeOf(time.Duration(0))
var timeTimeType = reflect.TypeOf(time.Time{})

// Decode binds target from the node's subtree. Target must be a non-nil
// pointer. Leaf values are parsed with locale-independent rules; slices bind
// from the node's immediate children in mapping order; maps use each
// immediate child's own key; structs bind exported fields by name (or a
// `conf:"name"` tag), case-insensitively, and fields without a corresponding
// child keep the value they already hold. A missing node leaves the target
// untouched. Unparsable leaves fail with *FormatError; target kinds the
// engine does not recognize fail with *UnsupportedShapeError.
func (n Node) Decode(target any) error {
	if target == nil {
		return errors.New("conflayer: decode target cannot be nil")
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("conflayer: decode target must be a non-nil pointer")
	}
	return decodeValue(n, rv.Elem())
}

func decodeValue(n Node, v reflect.Value) error {
	t := v.Type()
	if t != timeTimeType && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		raw, ok := n.Value()
		if !ok {
			return nil
		}
		if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return &FormatError{Key: n.path, Raw: raw, Target: t.String(), Err: err}
		}
		return nil
	}

	switch t.Kind() {
	case reflect.String:
		if raw, ok := n.Value(); ok {
			v.SetString(raw)
		}
		return nil

	case reflect.Bool:
		raw, ok := n.Value()
		if !ok {
			return nil
		}
		parsed, err := cast.ToBoolE(raw)
		if err != nil {
			return &FormatError{Key: n.path, Raw: raw, Target: "bool", Err: err}
		}
		v.SetBool(parsed)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		raw, ok := n.Value()
		if !ok {
			return nil
		}
		if t == timeDurationType {
			d, err := cast.ToDurationE(raw)
			if err != nil {
				return &FormatError{Key: n.path, Raw: raw, Target: "time.Duration", Err: err}
			}
			v.SetInt(int64(d))
			return nil
		}
		parsed, err := cast.ToInt64E(raw)
		if err != nil || v.OverflowInt(parsed) {
			return &FormatError{Key: n.path, Raw: raw, Target: t.String(), Err: err}
		}
		v.SetInt(parsed)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		raw, ok := n.Value()
		if !ok {
			return nil
		}
		parsed, err := cast.ToUint64E(raw)
		if err != nil || v.OverflowUint(parsed) {
			return &FormatError{Key: n.path, Raw: raw, Target: t.String(), Err: err}
		}
		v.SetUint(parsed)
		return nil

	case reflect.Float32, reflect.Float64:
		raw, ok := n.Value()
		if !ok {
			return nil
		}
		parsed, err := cast.ToFloat64E(raw)
		if err != nil || v.OverflowFloat(parsed) {
			return &FormatError{Key: n.path, Raw: raw, Target: t.String(), Err: err}
		}
		v.SetFloat(parsed)
		return nil

	case reflect.Struct:
		if t == timeTimeType {
			raw, ok := n.Value()
			if !ok {
				return nil
			}
			parsed, err := cast.ToTimeE(raw)
			if err != nil {
				return &FormatError{Key: n.path, Raw: raw, Target: "time.Time", Err: err}
			}
			v.Set(reflect.ValueOf(parsed))
			return nil
		}
		return decodeStruct(n, v)

	case reflect.Pointer:
		if !n.Exists() {
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(t.Elem()))
		}
		return decodeValue(n, v.Elem())

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			if raw, ok := n.Value(); ok {
				v.SetBytes([]byte(raw))
			}
			return nil
		}
		if !n.Exists() {
			return nil
		}
		children := n.Children()
		out := reflect.MakeSlice(t, len(children), len(children))
		for i, child := range children {
			if err := decodeValue(child, out.Index(i)); err != nil {
				return err
			}
		}
		v.Set(out)
		return nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &UnsupportedShapeError{Key: n.path, Kind: t.String()}
		}
		if !n.Exists() {
			return nil
		}
		children := n.Children()
		out := reflect.MakeMapWithSize(t, len(children))
		for _, child := range children {
			elem := reflect.New(t.Elem()).Elem()
			if err := decodeValue(child, elem); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(child.Key()).Convert(t.Key()), elem)
		}
		v.Set(out)
		return nil

	case reflect.Interface:
		if t.NumMethod() != 0 {
			return &UnsupportedShapeError{Key: n.path, Kind: t.String()}
		}
		if raw, ok := n.Value(); ok {
			v.Set(reflect.ValueOf(raw))
		}
		return nil

	default:
		return &UnsupportedShapeError{Key: n.path, Kind: t.Kind().String()}
	}
}

func decodeStruct(n Node, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get("conf")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		child := n.Field(name)
		if !child.Exists() {
			continue
		}
		if err := decodeValue(child, v.Field(i)); err != nil {
			return err
		}
	}
	return nil
}
