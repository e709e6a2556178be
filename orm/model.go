package orm

import (
	"context"
	"fmt"

	"github.com/hatlonely/orm/log"
	"github.com/hatlonely/orm/log/logger"
	"github.com/pkg/errors"
)

// Executor 执行 ? 占位符语句，rdb.Executor 实现了该接口
type Executor interface {
	Select(ctx context.Context, query string, args []any, limit int) ([]map[string]any, error)
	Execute(ctx context.Context, query string, args []any, autocommit bool) (int64, error)
}

// Model 把注册好的表和执行器绑定在一起，提供按主键的增删改查
type Model struct {
	table      *Table
	executor   Executor
	logger     logger.Logger
	strict     bool
	autocommit bool
}

type ModelOption func(*Model)

func WithLogger(l logger.Logger) ModelOption {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStrictAffectedRows 写操作影响行数不为 1 时返回 ErrAnomaly，默认只打印告警日志
func WithStrictAffectedRows() ModelOption {
	return func(m *Model) { m.strict = true }
}

// WithAutocommit 为 false 时每个写操作在单独的事务中执行
func WithAutocommit(autocommit bool) ModelOption {
	return func(m *Model) { m.autocommit = autocommit }
}

func NewModel(table *Table, executor Executor, opts ...ModelOption) *Model {
	m := &Model{
		table:      table,
		executor:   executor,
		logger:     log.Default(),
		autocommit: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithGroup("orm")
	return m
}

func (m *Model) Table() *Table {
	return m.table
}

// New 创建一条未持久化的记录，values 会被复制
func (m *Model) New(values map[string]any) *Record {
	r := &Record{model: m, values: make(map[string]any, len(values))}
	for k, v := range values {
		r.values[k] = v
	}
	return r
}

// Find 按主键查询，记录不存在时返回 nil, nil
func (m *Model) Find(ctx context.Context, pk any) (*Record, error) {
	query := fmt.Sprintf("%s where %s=?", m.table.SelectSQL(), quote(m.table.primaryKey.Name))
	rows, err := m.executor.Select(ctx, query, []any{pk}, 1)
	if err != nil {
		return nil, errors.WithMessagef(err, "find %s failed", m.table.name)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &Record{model: m, values: rows[0]}, nil
}

func (m *Model) FindAll(ctx context.Context, opts ...QueryOption) ([]*Record, error) {
	query, args, limit, err := newQuery(opts).build(m.table.SelectSQL())
	if err != nil {
		return nil, err
	}

	rows, err := m.executor.Select(ctx, query, args, limit)
	if err != nil {
		return nil, errors.WithMessagef(err, "find all %s failed", m.table.name)
	}
	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, &Record{model: m, values: row})
	}
	return records, nil
}

// FindNumber 计算聚合表达式，例如 count(id)，只使用 Where 条件
// 查询没有返回任何行时 found 为 false
func (m *Model) FindNumber(ctx context.Context, expr string, opts ...QueryOption) (any, bool, error) {
	q := newQuery(opts)
	q.orderBy = ""
	q.limit = nil

	base := fmt.Sprintf("select %s _num_ from %s", expr, quote(m.table.name))
	query, args, _, err := q.build(base)
	if err != nil {
		return nil, false, err
	}

	rows, err := m.executor.Select(ctx, query, args, 1)
	if err != nil {
		return nil, false, errors.WithMessagef(err, "find number %s failed", m.table.name)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0]["_num_"], true, nil
}

// Count 统计满足条件的记录数
func (m *Model) Count(ctx context.Context, opts ...QueryOption) (int64, error) {
	value, found, err := m.FindNumber(ctx, fmt.Sprintf("count(%s)", quote(m.table.primaryKey.Name)), opts...)
	if err != nil || !found {
		return 0, err
	}
	return toInt64(value)
}

func (m *Model) execute(ctx context.Context, operation string, query string, args []any) error {
	rows, err := m.executor.Execute(ctx, query, args, m.autocommit)
	if err != nil {
		return errors.WithMessagef(err, "%s %s failed", operation, m.table.name)
	}
	if rows == 1 {
		return nil
	}

	m.logger.WarnContext(ctx, "unexpected affected rows",
		"table", m.table.name,
		"operation", operation,
		"affectedRows", rows,
	)
	if m.strict {
		return errors.WithMessagef(ErrAnomaly, "%s %s affected %d rows", operation, m.table.name, rows)
	}
	return nil
}
