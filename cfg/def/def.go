package def

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var durationType = reflect.TypeOf(time.Duration(0))

// SetDefaults 按 def tag 为零值字段填充默认值，嵌套结构体递归处理
// 指针字段为 nil 且带 def tag 时会分配新值，nil 的结构体指针保持为 nil
func SetDefaults(object any) error {
	rv := reflect.ValueOf(object)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("object must be a non-nil pointer")
	}
	return setDefaults(rv.Elem())
}

func setDefaults(rv reflect.Value) error {
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fv := rv.Field(i)
		if !fv.CanSet() {
			continue
		}

		if tag, ok := field.Tag.Lookup("def"); ok && fv.IsZero() {
			target := fv
			if target.Kind() == reflect.Ptr {
				target.Set(reflect.New(target.Type().Elem()))
				target = target.Elem()
			}
			if err := setValue(target, tag); err != nil {
				return errors.WithMessagef(err, "field %s", field.Name)
			}
			continue
		}

		if err := setDefaults(fv); err != nil {
			return errors.WithMessagef(err, "field %s", field.Name)
		}
	}
	return nil
}

func setValue(rv reflect.Value, value string) error {
	if rv.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "invalid duration %q", value)
		}
		rv.SetInt(int64(d))
		return nil
	}

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid bool %q", value)
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 0, rv.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid int %q", value)
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 0, rv.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid uint %q", value)
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, rv.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid float %q", value)
		}
		rv.SetFloat(f)
	case reflect.Slice:
		parts := strings.Split(value, ",")
		slice := reflect.MakeSlice(rv.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := setValue(slice.Index(i), strings.TrimSpace(part)); err != nil {
				return errors.WithMessagef(err, "element %d", i)
			}
		}
		rv.Set(slice)
	default:
		return errors.Errorf("unsupported type %v", rv.Type())
	}
	return nil
}
