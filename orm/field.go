package orm

import (
	"reflect"
	"time"

	"github.com/hatlonely/orm/uid/intgen"
	"github.com/hatlonely/orm/uid/strgen"
	"github.com/pkg/errors"
)

// StorageType 列的存储类型
type StorageType string

const (
	VARCHAR StorageType = "VARCHAR"
	BOOLEAN StorageType = "BOOLEAN"
	BIGINT  StorageType = "BIGINT"
	REAL    StorageType = "REAL"
	TEXT    StorageType = "TEXT"
)

func (t StorageType) Valid() bool {
	switch t {
	case VARCHAR, BOOLEAN, BIGINT, REAL, TEXT:
		return true
	}
	return false
}

func (t StorageType) ddl() string {
	switch t {
	case VARCHAR:
		return "varchar(100)"
	case BOOLEAN:
		return "boolean"
	case BIGINT:
		return "bigint"
	case REAL:
		return "real"
	case TEXT:
		return "text"
	}
	return ""
}

// DefaultFunc 默认值生成函数，每次需要默认值时调用一次
type DefaultFunc func() any

// Field 描述一列，声明后不再修改
type Field struct {
	// 列名，为空时使用 Column.Slot
	Name       string
	Type       StorageType
	DDL        string
	PrimaryKey bool
	// 固定值或 DefaultFunc，nil 表示没有默认值
	Default any
}

type FieldOption func(*Field)

func WithName(name string) FieldOption {
	return func(f *Field) { f.Name = name }
}

func WithPrimaryKey() FieldOption {
	return func(f *Field) { f.PrimaryKey = true }
}

func WithDefault(value any) FieldOption {
	return func(f *Field) { f.Default = value }
}

func WithDefaultFunc(fn DefaultFunc) FieldOption {
	return func(f *Field) { f.Default = fn }
}

func WithDDL(ddl string) FieldOption {
	return func(f *Field) { f.DDL = ddl }
}

func newField(t StorageType, defaultValue any, opts []FieldOption) Field {
	f := Field{Type: t, DDL: t.ddl(), Default: defaultValue}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// NewField 创建指定存储类型的列，类型不合法时返回 ErrSchema
func NewField(t StorageType, opts ...FieldOption) (Field, error) {
	f := newField(t, nil, opts)
	if err := f.validate(); err != nil {
		return Field{}, err
	}
	return f, nil
}

func StringField(opts ...FieldOption) Field {
	return newField(VARCHAR, nil, opts)
}

func BooleanField(opts ...FieldOption) Field {
	return newField(BOOLEAN, false, opts)
}

func IntegerField(opts ...FieldOption) Field {
	return newField(BIGINT, int64(0), opts)
}

func FloatField(opts ...FieldOption) Field {
	return newField(REAL, 0.0, opts)
}

func TextField(opts ...FieldOption) Field {
	return newField(TEXT, nil, opts)
}

func (f Field) validate() error {
	if !f.Type.Valid() {
		return errors.WithMessagef(ErrSchema, "invalid storage type %q", f.Type)
	}
	if rv := reflect.ValueOf(f.Default); rv.Kind() == reflect.Func {
		if rv.IsNil() || rv.Type().NumIn() != 0 || rv.Type().NumOut() != 1 {
			return errors.WithMessagef(ErrSchema, "default producer %T must take no arguments and return one value", f.Default)
		}
	}
	return nil
}

// ResolveDefault 计算默认值，DefaultFunc 每次调用都会重新生成
func (f Field) ResolveDefault() (any, bool) {
	switch d := f.Default.(type) {
	case nil:
		return nil, false
	case DefaultFunc:
		return d(), true
	case func() any:
		return d(), true
	case func() string:
		return d(), true
	case func() int64:
		return d(), true
	case func() float64:
		return d(), true
	}

	// 其他无参单返回值的函数同样视为生成函数
	if rv := reflect.ValueOf(f.Default); rv.Kind() == reflect.Func {
		if rv.IsNil() || rv.Type().NumIn() != 0 || rv.Type().NumOut() != 1 {
			return nil, false
		}
		return rv.Call(nil)[0].Interface(), true
	}
	return f.Default, true
}

// GeneratedString 每次使用 gen 生成一个新的字符串 ID
func GeneratedString(gen strgen.StrGenerator) DefaultFunc {
	return func() any { return gen.Generate() }
}

// GeneratedInt 每次使用 gen 生成一个新的整数 ID
func GeneratedInt(gen intgen.IntGenerator) DefaultFunc {
	return func() any { return gen.Generate() }
}

// Now 当前的 unix 时间，单位秒，带小数
func Now() DefaultFunc {
	return func() any { return float64(time.Now().UnixMicro()) / 1e6 }
}
