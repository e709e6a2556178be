package orm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Column 记录类型上的一个槽位和它对应的列
type Column struct {
	Slot  string
	Field Field
}

func (c Column) name() string {
	if c.Field.Name != "" {
		return c.Field.Name
	}
	return c.Slot
}

// Table 注册后的表结构，创建后只读，可以在多个 goroutine 中共享
type Table struct {
	typeName   string
	name       string
	primaryKey Field
	fields     []Field
	mappings   map[string]Field

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

type tableOptions struct {
	name string
}

type TableOption func(*tableOptions)

// WithTableName 指定表名，默认使用类型名
func WithTableName(name string) TableOption {
	return func(o *tableOptions) { o.name = name }
}

var tables sync.Map

// Register 校验列声明并生成 SQL 模板
// 同一个类型名只注册一次，之后的调用直接返回第一次注册的结果
func Register(typeName string, columns []Column, opts ...TableOption) (*Table, error) {
	if t, ok := tables.Load(typeName); ok {
		return t.(*Table), nil
	}

	t, err := newTable(typeName, columns, opts)
	if err != nil {
		return nil, errors.WithMessagef(err, "register %s failed", typeName)
	}

	actual, _ := tables.LoadOrStore(typeName, t)
	return actual.(*Table), nil
}

func MustRegister(typeName string, columns []Column, opts ...TableOption) *Table {
	t, err := Register(typeName, columns, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func Lookup(typeName string) (*Table, bool) {
	t, ok := tables.Load(typeName)
	if !ok {
		return nil, false
	}
	return t.(*Table), true
}

func newTable(typeName string, columns []Column, opts []TableOption) (*Table, error) {
	if typeName == "" {
		return nil, errors.WithMessage(ErrSchema, "type name is empty")
	}

	options := &tableOptions{name: typeName}
	for _, opt := range opts {
		opt(options)
	}
	if options.name == "" {
		return nil, errors.WithMessage(ErrSchema, "table name is empty")
	}

	t := &Table{
		typeName: typeName,
		name:     options.name,
		mappings: map[string]Field{},
	}

	var primaryKeys []string
	for _, c := range columns {
		name := c.name()
		if name == "" {
			return nil, errors.WithMessagef(ErrSchema, "column for slot %q has no name", c.Slot)
		}
		if _, ok := t.mappings[name]; ok {
			return nil, errors.WithMessagef(ErrSchema, "duplicate column %q", name)
		}
		if err := c.Field.validate(); err != nil {
			return nil, errors.WithMessagef(err, "column %q", name)
		}

		f := c.Field
		f.Name = name
		if f.DDL == "" {
			f.DDL = f.Type.ddl()
		}
		t.mappings[name] = f
		if f.PrimaryKey {
			primaryKeys = append(primaryKeys, name)
			t.primaryKey = f
		} else {
			t.fields = append(t.fields, f)
		}
	}

	switch len(primaryKeys) {
	case 0:
		return nil, errors.WithMessage(ErrSchema, "primary key not found")
	case 1:
	default:
		return nil, errors.WithMessagef(ErrSchema, "duplicate primary key %s", strings.Join(primaryKeys, ", "))
	}

	t.buildSQL()
	return t, nil
}

func quote(name string) string {
	return "`" + name + "`"
}

func (t *Table) buildSQL() {
	pk := quote(t.primaryKey.Name)
	table := quote(t.name)

	names := make([]string, 0, len(t.fields))
	sets := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		names = append(names, quote(f.Name))
		sets = append(sets, quote(f.Name)+"=?")
	}

	t.selectSQL = fmt.Sprintf("select %s from %s", strings.Join(append([]string{pk}, names...), ", "), table)
	t.insertSQL = fmt.Sprintf("insert into %s (%s) values (%s)",
		table,
		strings.Join(append(names, pk), ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(names)+1), ", "),
	)
	t.updateSQL = fmt.Sprintf("update %s set %s where %s=?", table, strings.Join(sets, ", "), pk)
	t.deleteSQL = fmt.Sprintf("delete from %s where %s=?", table, pk)
}

func (t *Table) TypeName() string {
	return t.typeName
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) PrimaryKey() Field {
	return t.primaryKey
}

// Fields 非主键列，按声明顺序
func (t *Table) Fields() []Field {
	fields := make([]Field, len(t.fields))
	copy(fields, t.fields)
	return fields
}

func (t *Table) Field(name string) (Field, bool) {
	f, ok := t.mappings[name]
	return f, ok
}

// Columns 所有列名，主键在前
func (t *Table) Columns() []string {
	columns := make([]string, 0, len(t.fields)+1)
	columns = append(columns, t.primaryKey.Name)
	for _, f := range t.fields {
		columns = append(columns, f.Name)
	}
	return columns
}

func (t *Table) SelectSQL() string {
	return t.selectSQL
}

func (t *Table) InsertSQL() string {
	return t.insertSQL
}

func (t *Table) UpdateSQL() string {
	return t.updateSQL
}

func (t *Table) DeleteSQL() string {
	return t.deleteSQL
}

// CreateTableSQL 根据列的 DDL 生成建表语句
func (t *Table) CreateTableSQL() string {
	defs := make([]string, 0, len(t.fields)+2)
	defs = append(defs, fmt.Sprintf("%s %s not null", quote(t.primaryKey.Name), t.primaryKey.DDL))
	for _, f := range t.fields {
		defs = append(defs, fmt.Sprintf("%s %s", quote(f.Name), f.DDL))
	}
	defs = append(defs, fmt.Sprintf("primary key (%s)", quote(t.primaryKey.Name)))
	return fmt.Sprintf("create table if not exists %s (%s)", quote(t.name), strings.Join(defs, ", "))
}
