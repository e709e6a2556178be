package orm

import (
	"context"
	"fmt"
)

// Record 一行数据，按列名读写，不能在多个 goroutine 中并发修改
type Record struct {
	model  *Model
	values map[string]any
}

func (r *Record) Model() *Model {
	return r.model
}

// Get 列不存在时返回 nil
func (r *Record) Get(name string) any {
	return r.values[name]
}

func (r *Record) Set(name string, value any) *Record {
	r.values[name] = value
	return r
}

func (r *Record) Unset(name string) {
	delete(r.values, name)
}

// Has 列存在且不为 nil
func (r *Record) Has(name string) bool {
	return r.values[name] != nil
}

// Values 返回所有列值的副本
func (r *Record) Values() map[string]any {
	values := make(map[string]any, len(r.values))
	for k, v := range r.values {
		values[k] = v
	}
	return values
}

func (r *Record) String(name string) string {
	switch v := r.values[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 无法转换时返回 0
func (r *Record) Int64(name string) int64 {
	n, _ := toInt64(r.values[name])
	return n
}

func (r *Record) Float64(name string) float64 {
	f, _ := toFloat64(r.values[name])
	return f
}

// Bool 兼容 MySQL 返回的 0/1
func (r *Record) Bool(name string) bool {
	b, _ := toBool(r.values[name])
	return b
}

// Scan 把列值写入结构体，字段通过 `orm:"column"` 标签对应到列
func (r *Record) Scan(dest any) error {
	return mapToStruct(r.values, dest)
}

// valueOrDefault 值缺失时使用列的默认值，并把默认值写回记录
func (r *Record) valueOrDefault(ctx context.Context, f Field) any {
	if v := r.values[f.Name]; v != nil {
		return v
	}
	value, ok := f.ResolveDefault()
	if !ok {
		return nil
	}
	r.model.logger.DebugContext(ctx, "using default value",
		"table", r.model.table.name,
		"column", f.Name,
		"value", value,
	)
	r.values[f.Name] = value
	return value
}

// Save 插入记录，缺失的列使用默认值
func (r *Record) Save(ctx context.Context) error {
	t := r.model.table
	args := make([]any, 0, len(t.fields)+1)
	for _, f := range t.fields {
		args = append(args, r.valueOrDefault(ctx, f))
	}
	args = append(args, r.valueOrDefault(ctx, t.primaryKey))
	return r.model.execute(ctx, "insert", t.InsertSQL(), args)
}

// Update 按主键更新所有非主键列，缺失的列写入 NULL，不使用默认值
func (r *Record) Update(ctx context.Context) error {
	t := r.model.table
	args := make([]any, 0, len(t.fields)+1)
	for _, f := range t.fields {
		args = append(args, r.values[f.Name])
	}
	args = append(args, r.values[t.primaryKey.Name])
	return r.model.execute(ctx, "update", t.UpdateSQL(), args)
}

// Remove 按主键删除
func (r *Record) Remove(ctx context.Context) error {
	t := r.model.table
	return r.model.execute(ctx, "remove", t.DeleteSQL(), []any{r.values[t.primaryKey.Name]})
}
