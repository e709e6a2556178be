package orm

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type structField struct {
	index     []int
	column    string
	omitempty bool
}

type structMeta struct {
	fields  []structField
	columns map[string]structField
}

var structMetas sync.Map

// parseStruct 解析结构体的 orm 标签，没有标签时使用字段名，`orm:"-"` 表示忽略
func parseStruct(rt reflect.Type) *structMeta {
	if m, ok := structMetas.Load(rt); ok {
		return m.(*structMeta)
	}

	meta := &structMeta{columns: map[string]structField{}}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("orm")
		if tag == "-" {
			continue
		}
		sf := structField{index: field.Index, column: field.Name}
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				sf.column = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					sf.omitempty = true
				}
			}
		}
		meta.fields = append(meta.fields, sf)
		meta.columns[sf.column] = sf
	}

	actual, _ := structMetas.LoadOrStore(rt, meta)
	return actual.(*structMeta)
}

func structValue(dest any) (reflect.Value, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.Errorf("dest must be a non-nil pointer to struct, got %T", dest)
	}
	return rv.Elem(), nil
}

// mapToStruct 把列值写入结构体，值为 nil 或结构体中没有对应字段的列被忽略
func mapToStruct(data map[string]any, dest any) error {
	rv, err := structValue(dest)
	if err != nil {
		return err
	}

	meta := parseStruct(rv.Type())
	for _, sf := range meta.fields {
		value, ok := data[sf.column]
		if !ok || value == nil {
			continue
		}
		if err := setFieldValue(rv.FieldByIndex(sf.index), value); err != nil {
			return errors.WithMessagef(err, "set field %s failed", sf.column)
		}
	}
	return nil
}

// structToMap 读取结构体字段，omitempty 的零值和 nil 指针不会出现在结果中
func structToMap(src any) (map[string]any, error) {
	rv, err := structValue(src)
	if err != nil {
		return nil, err
	}

	meta := parseStruct(rv.Type())
	values := map[string]any{}
	for _, sf := range meta.fields {
		fv := rv.FieldByIndex(sf.index)
		if sf.omitempty && fv.IsZero() {
			continue
		}
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		values[sf.column] = fv.Interface()
	}
	return values, nil
}

var timeType = reflect.TypeOf(time.Time{})

var timeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func setFieldValue(fieldValue reflect.Value, value any) error {
	if fieldValue.Kind() == reflect.Ptr {
		if fieldValue.IsNil() {
			fieldValue.Set(reflect.New(fieldValue.Type().Elem()))
		}
		return setFieldValue(fieldValue.Elem(), value)
	}

	fieldType := fieldValue.Type()
	if b, ok := value.([]byte); ok {
		value = string(b)
	}

	// MySQL 的 BOOLEAN 列返回 int64
	if fieldType.Kind() == reflect.Bool {
		b, err := toBool(value)
		if err != nil {
			return err
		}
		fieldValue.SetBool(b)
		return nil
	}

	if fieldType == timeType {
		switch v := value.(type) {
		case time.Time:
			fieldValue.Set(reflect.ValueOf(v))
			return nil
		case string:
			var lastErr error
			for _, format := range timeFormats {
				t, err := time.Parse(format, v)
				if err == nil {
					fieldValue.Set(reflect.ValueOf(t))
					return nil
				}
				lastErr = err
			}
			return errors.Wrapf(lastErr, "cannot parse time %q", v)
		}
	}

	switch fieldType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		fieldValue.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.Errorf("cannot set negative value %d to %v", n, fieldType)
		}
		fieldValue.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(value)
		if err != nil {
			return err
		}
		fieldValue.SetFloat(f)
		return nil
	case reflect.String:
		if s, ok := value.(string); ok {
			fieldValue.SetString(s)
			return nil
		}
		// 数字直接 Convert 会得到对应的 rune
		return errors.Errorf("cannot convert %T to %v", value, fieldType)
	}

	valueType := reflect.TypeOf(value)
	if valueType.AssignableTo(fieldType) {
		fieldValue.Set(reflect.ValueOf(value))
		return nil
	}
	if valueType.ConvertibleTo(fieldType) {
		fieldValue.Set(reflect.ValueOf(value).Convert(fieldType))
		return nil
	}
	return errors.Errorf("cannot convert %v to %v", valueType, fieldType)
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, errors.Wrapf(err, "cannot convert %q to bool", v)
		}
		return b, nil
	case []byte:
		return toBool(string(v))
	}
	return false, errors.Errorf("cannot convert %T to bool", value)
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "cannot convert %q to int64", v)
		}
		return n, nil
	case []byte:
		return toInt64(string(v))
	}
	return 0, errors.Errorf("cannot convert %T to int64", value)
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "cannot convert %q to float64", v)
		}
		return f, nil
	case []byte:
		return toFloat64(string(v))
	}
	return 0, errors.Errorf("cannot convert %T to float64", value)
}
