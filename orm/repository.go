package orm

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
)

// Repository 以结构体的形式读写一张表，T 的字段通过 `orm:"column[,omitempty]"` 对应到列
// 只有 omitempty 的零值字段和 nil 指针字段会在 Save 时使用列的默认值，其他字段总是写入字段的值
type Repository[T any] struct {
	model *Model
}

// NewRepository 要求 T 是结构体并且包含主键列，主键有默认值时主键字段必须是 omitempty 或指针
func NewRepository[T any](model *Model) (*Repository[T], error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, errors.WithMessagef(ErrSchema, "%v is not a struct", rt)
	}
	meta := parseStruct(rt)
	pk := model.table.primaryKey.Name
	pkField, ok := meta.columns[pk]
	if !ok {
		return nil, errors.WithMessagef(ErrSchema, "%v has no field for primary key %q", rt, pk)
	}
	if model.table.primaryKey.Default != nil && !pkField.omitempty && rt.FieldByIndex(pkField.index).Type.Kind() != reflect.Ptr {
		return nil, errors.WithMessagef(ErrSchema, "%v primary key field %q has a default and needs omitempty", rt, pk)
	}
	for column := range meta.columns {
		if _, ok := model.table.Field(column); !ok {
			return nil, errors.WithMessagef(ErrSchema, "%v field %q is not a column of %s", rt, column, model.table.name)
		}
	}
	return &Repository[T]{model: model}, nil
}

func (r *Repository[T]) Model() *Model {
	return r.model
}

func (r *Repository[T]) Find(ctx context.Context, pk any) (*T, error) {
	record, err := r.model.Find(ctx, pk)
	if err != nil || record == nil {
		return nil, err
	}
	v := new(T)
	if err := record.Scan(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Repository[T]) FindAll(ctx context.Context, opts ...QueryOption) ([]*T, error) {
	records, err := r.model.FindAll(ctx, opts...)
	if err != nil {
		return nil, err
	}
	vs := make([]*T, 0, len(records))
	for _, record := range records {
		v := new(T)
		if err := record.Scan(v); err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// Save 插入 v，默认值生成的列会写回 v
func (r *Repository[T]) Save(ctx context.Context, v *T) error {
	record, err := r.record(v)
	if err != nil {
		return err
	}
	if err := record.Save(ctx); err != nil {
		return err
	}
	return record.Scan(v)
}

func (r *Repository[T]) Update(ctx context.Context, v *T) error {
	record, err := r.record(v)
	if err != nil {
		return err
	}
	return record.Update(ctx)
}

func (r *Repository[T]) Remove(ctx context.Context, v *T) error {
	record, err := r.record(v)
	if err != nil {
		return err
	}
	return record.Remove(ctx)
}

func (r *Repository[T]) record(v *T) (*Record, error) {
	values, err := structToMap(v)
	if err != nil {
		return nil, err
	}
	return &Record{model: r.model, values: values}, nil
}
