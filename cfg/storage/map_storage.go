package storage

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hatlonely/orm/cfg/def"
	"github.com/hatlonely/orm/cfg/validator"
	"github.com/pkg/errors"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// MapStorage 以解码后的 map/slice 树作为配置数据
type MapStorage struct {
	data any
}

func NewMapStorage(data any) *MapStorage {
	return &MapStorage{data: data}
}

func (ms *MapStorage) Data() any {
	return ms.data
}

func (ms *MapStorage) Sub(key string) Storage {
	if key == "" {
		return ms
	}

	current := ms.data
	for _, k := range parseKey(key) {
		if current = valueByKey(current, k); current == nil {
			break
		}
	}
	return NewMapStorage(current)
}

func (ms *MapStorage) ConvertTo(object any) error {
	rv := reflect.ValueOf(object)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("object must be a non-nil pointer")
	}
	if err := convertValue(ms.data, rv.Elem()); err != nil {
		return err
	}

	if rv.Elem().Kind() == reflect.Struct {
		if err := def.SetDefaults(object); err != nil {
			return errors.WithMessage(err, "set defaults failed")
		}
		if err := validator.ValidateStruct(object); err != nil {
			return errors.Wrap(err, "validate failed")
		}
	}
	return nil
}

// parseKey 把 "a.b[0].c" 拆成 ["a", "b", "0", "c"]
func parseKey(key string) []string {
	return strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '[' || r == ']'
	})
}

func valueByKey(data any, key string) any {
	rv := reflect.ValueOf(data)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil
		}
		return rv.Index(idx).Interface()
	}
	return nil
}

func convertValue(src any, dst reflect.Value) error {
	sv := reflect.ValueOf(src)
	for sv.IsValid() && sv.Kind() == reflect.Ptr {
		sv = sv.Elem()
	}
	if !sv.IsValid() {
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return convertValue(src, dst.Elem())
	}

	if sv.Type() == dst.Type() {
		dst.Set(sv)
		return nil
	}

	switch dst.Type() {
	case durationType:
		return convertToDuration(sv, dst)
	case timeType:
		return convertToTime(sv, dst)
	}

	switch dst.Kind() {
	case reflect.Interface:
		// 组件的 options 延迟到构造时再转换成具体类型
		if sv.Kind() == reflect.Map && dst.Type().NumMethod() == 0 {
			dst.Set(reflect.ValueOf(NewMapStorage(sv.Interface())))
			return nil
		}
		if sv.Type().AssignableTo(dst.Type()) {
			dst.Set(sv)
			return nil
		}
	case reflect.Struct:
		return convertToStruct(sv, dst)
	case reflect.Map:
		return convertToMap(sv, dst)
	case reflect.Slice:
		return convertToSlice(sv, dst)
	case reflect.String:
		if sv.Kind() != reflect.String {
			return errors.Errorf("cannot convert %v to string", sv.Type())
		}
		dst.SetString(sv.String())
		return nil
	case reflect.Bool:
		if sv.Kind() == reflect.String {
			b, err := strconv.ParseBool(sv.String())
			if err != nil {
				return errors.Wrapf(err, "invalid bool %q", sv.String())
			}
			dst.SetBool(b)
			return nil
		}
	default:
		if sv.Kind() == reflect.String && isNumber(dst.Kind()) {
			return convertStringToNumber(sv.String(), dst)
		}
	}

	if sv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return errors.Errorf("cannot convert %v to %v", sv.Type(), dst.Type())
}

func isNumber(kind reflect.Kind) bool {
	return kind >= reflect.Int && kind <= reflect.Float64
}

// convertStringToNumber ini 和环境变量中的数字常以字符串出现
func convertStringToNumber(s string, dst reflect.Value) error {
	switch {
	case dst.Kind() >= reflect.Int && dst.Kind() <= reflect.Int64:
		n, err := strconv.ParseInt(s, 0, dst.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid int %q", s)
		}
		dst.SetInt(n)
	case dst.Kind() >= reflect.Uint && dst.Kind() <= reflect.Uintptr:
		n, err := strconv.ParseUint(s, 0, dst.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid uint %q", s)
		}
		dst.SetUint(n)
	default:
		f, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid float %q", s)
		}
		dst.SetFloat(f)
	}
	return nil
}

// convertToDuration 字符串按 time.ParseDuration 解析，整数视为纳秒，浮点数视为秒
func convertToDuration(sv, dst reflect.Value) error {
	switch {
	case sv.Kind() == reflect.String:
		d, err := time.ParseDuration(sv.String())
		if err != nil {
			return errors.Wrapf(err, "invalid duration %q", sv.String())
		}
		dst.SetInt(int64(d))
	case sv.Kind() >= reflect.Int && sv.Kind() <= reflect.Int64:
		dst.SetInt(sv.Int())
	case sv.Kind() >= reflect.Uint && sv.Kind() <= reflect.Uint64:
		dst.SetInt(int64(sv.Uint()))
	case sv.Kind() == reflect.Float32 || sv.Kind() == reflect.Float64:
		dst.SetInt(int64(sv.Float() * float64(time.Second)))
	default:
		return errors.Errorf("cannot convert %v to time.Duration", sv.Type())
	}
	return nil
}

func convertToTime(sv, dst reflect.Value) error {
	if sv.Type() == timeType {
		dst.Set(sv)
		return nil
	}
	switch {
	case sv.Kind() == reflect.String:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, sv.String()); err == nil {
				dst.Set(reflect.ValueOf(t))
				return nil
			}
		}
		return errors.Errorf("invalid time %q", sv.String())
	case sv.Kind() >= reflect.Int && sv.Kind() <= reflect.Int64:
		dst.Set(reflect.ValueOf(time.Unix(sv.Int(), 0)))
	case sv.Kind() == reflect.Float32 || sv.Kind() == reflect.Float64:
		sec := sv.Float()
		dst.Set(reflect.ValueOf(time.Unix(int64(sec), int64((sec-float64(int64(sec)))*1e9))))
	default:
		return errors.Errorf("cannot convert %v to time.Time", sv.Type())
	}
	return nil
}

func convertToMap(sv, dst reflect.Value) error {
	if sv.Kind() != reflect.Map {
		return errors.Errorf("cannot convert %v to %v", sv.Type(), dst.Type())
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), sv.Len()))
	}

	keyType, elemType := dst.Type().Key(), dst.Type().Elem()
	iter := sv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if !k.Type().ConvertibleTo(keyType) {
			return errors.Errorf("cannot convert key %v to %v", k.Type(), keyType)
		}
		elem := reflect.New(elemType).Elem()
		if err := convertValue(iter.Value().Interface(), elem); err != nil {
			return errors.WithMessagef(err, "key %v", k.Interface())
		}
		dst.SetMapIndex(k.Convert(keyType), elem)
	}
	return nil
}

func convertToSlice(sv, dst reflect.Value) error {
	if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
		return errors.Errorf("cannot convert %v to %v", sv.Type(), dst.Type())
	}
	slice := reflect.MakeSlice(dst.Type(), sv.Len(), sv.Len())
	for i := 0; i < sv.Len(); i++ {
		if err := convertValue(sv.Index(i).Interface(), slice.Index(i)); err != nil {
			return errors.WithMessagef(err, "index %d", i)
		}
	}
	dst.Set(slice)
	return nil
}

// convertToStruct 字段名取 cfg tag，没有 tag 时使用字段名，均不区分大小写
func convertToStruct(sv, dst reflect.Value) error {
	if sv.Kind() != reflect.Map {
		return errors.Errorf("cannot convert %v to %v", sv.Type(), dst.Type())
	}

	values := make(map[string]reflect.Value, sv.Len())
	iter := sv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if k.Kind() == reflect.String {
			values[strings.ToLower(k.String())] = iter.Value()
		}
	}

	dt := dst.Type()
	for i := 0; i < dt.NumField(); i++ {
		field := dt.Field(i)
		fv := dst.Field(i)
		if !fv.CanSet() {
			continue
		}

		name := field.Name
		if tag := strings.Split(field.Tag.Get("cfg"), ",")[0]; tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}

		v, ok := values[strings.ToLower(name)]
		if !ok {
			if field.Anonymous && fv.Kind() == reflect.Struct {
				if err := convertToStruct(sv, fv); err != nil {
					return err
				}
			}
			continue
		}
		if err := convertValue(v.Interface(), fv); err != nil {
			return errors.WithMessagef(err, "field %s", field.Name)
		}
	}
	return nil
}
