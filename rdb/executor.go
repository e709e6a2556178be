package rdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hatlonely/orm/log"
	"github.com/hatlonely/orm/log/logger"
	"github.com/hatlonely/orm/ref"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ExecutorOptions struct {
	// 单条语句的超时时间，0 表示不限制
	StatementTimeout time.Duration `cfg:"statementTimeout"`
	// 指标前缀和日志、追踪中的 component 字段
	Name          string           `cfg:"name" def:"orm"`
	EnableMetrics bool             `cfg:"enableMetrics"`
	EnableTracing bool             `cfg:"enableTracing"`
	Logger        *ref.TypeOptions `cfg:"logger"`
}

// Executor 在连接池上执行语句，语句中统一使用 ? 作为占位符
type Executor struct {
	pool             *Pool
	bindType         int
	statementTimeout time.Duration
	name             string

	logger  logger.Logger
	metrics *executorMetrics
	tracer  trace.Tracer
}

func NewExecutorWithOptions(pool *Pool, options *ExecutorOptions) (*Executor, error) {
	if pool == nil {
		return nil, ErrPoolNotInitialized
	}
	if options == nil {
		options = &ExecutorOptions{}
	}

	l, err := log.NewLoggerWithOptions(options.Logger)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create logger")
	}

	name := options.Name
	if name == "" {
		name = "orm"
	}

	e := &Executor{
		pool:             pool,
		bindType:         sqlx.BindType(pool.DriverName()),
		statementTimeout: options.StatementTimeout,
		name:             name,
		logger:           l.WithGroup("executor"),
	}
	if options.EnableMetrics {
		e.metrics = newExecutorMetrics(name)
	}
	if options.EnableTracing {
		e.tracer = otel.Tracer(fmt.Sprintf("rdb.%s", name))
	}
	return e, nil
}

func (e *Executor) Pool() *Pool {
	return e.pool
}

// Rebind 把 ? 占位符替换成当前驱动的占位符，参数顺序和个数不变
func (e *Executor) Rebind(query string) string {
	return sqlx.Rebind(e.bindType, query)
}

// Select 执行查询，limit > 0 时最多返回 limit 行
// []byte 类型的列值会转换成 string
func (e *Executor) Select(ctx context.Context, query string, args []any, limit int) ([]map[string]any, error) {
	query = e.Rebind(query)

	var rows []map[string]any
	err := e.observe(ctx, "select", query, func(ctx context.Context) (int64, error) {
		conn, err := e.pool.Acquire(ctx)
		if err != nil {
			return 0, err
		}
		defer conn.Release()

		ctx, cancel := e.withStatementTimeout(ctx)
		defer cancel()

		rows, err = e.selectRows(ctx, conn, query, args, limit)
		if err != nil {
			if ctx.Err() != nil {
				conn.MarkBroken()
			}
			return 0, newExecutionError(ctx, query, err)
		}
		return int64(len(rows)), nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *Executor) selectRows(ctx context.Context, conn *Conn, query string, args []any, limit int) ([]map[string]any, error) {
	rs, err := conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var result []map[string]any
	for (limit <= 0 || len(result) < limit) && rs.Next() {
		row := map[string]any{}
		if err := rs.MapScan(row); err != nil {
			return nil, err
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		result = append(result, row)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Exec 按连接池配置的 autocommit 执行写语句
func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return e.Execute(ctx, query, args, e.pool.Autocommit())
}

// Execute 执行写语句并返回影响的行数
// autocommit 为 false 时在显式事务中执行，失败先回滚再返回错误
func (e *Executor) Execute(ctx context.Context, query string, args []any, autocommit bool) (int64, error) {
	query = e.Rebind(query)

	var affected int64
	err := e.observe(ctx, "execute", query, func(ctx context.Context) (int64, error) {
		conn, err := e.pool.Acquire(ctx)
		if err != nil {
			return 0, err
		}
		defer conn.Release()

		ctx, cancel := e.withStatementTimeout(ctx)
		defer cancel()

		if autocommit {
			affected, err = e.exec(ctx, conn, query, args)
		} else {
			affected, err = e.execInTx(ctx, conn, query, args)
		}
		if err != nil {
			if ctx.Err() != nil {
				conn.MarkBroken()
			}
			return 0, newExecutionError(ctx, query, err)
		}
		return affected, nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (e *Executor) exec(ctx context.Context, conn *Conn, query string, args []any) (int64, error) {
	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (e *Executor) execInTx(ctx context.Context, conn *Conn, query string, args []any) (affected int64, err error) {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		conn.MarkBroken()
		return 0, errors.Wrap(err, "begin failed")
	}

	defer func() {
		if r := recover(); r != nil {
			e.rollback(ctx, conn, tx, errors.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	result, err := tx.ExecContext(ctx, query, args...)
	if err == nil {
		affected, err = result.RowsAffected()
	}
	if err != nil {
		e.rollback(ctx, conn, tx, err)
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		conn.MarkBroken()
		return 0, errors.Wrap(err, "commit failed")
	}
	return affected, nil
}

func (e *Executor) rollback(ctx context.Context, conn *Conn, tx *sqlx.Tx, cause error) {
	err := tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		conn.MarkBroken()
	}
	e.logger.ErrorContext(ctx, "transaction rolled back",
		"component", e.name,
		"cause", cause.Error(),
		"rollbackError", err,
	)
}

func (e *Executor) withStatementTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.statementTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.statementTimeout)
}

// observe 统一记录语句的日志、指标和追踪
func (e *Executor) observe(ctx context.Context, operation string, query string, fn func(context.Context) (int64, error)) error {
	start := time.Now()

	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "rdb."+operation,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("component", e.name),
				attribute.String("db.system", e.pool.DriverName()),
				attribute.String("db.statement", query),
			),
		)
		defer span.End()
	}

	e.logger.InfoContext(ctx, "sql", "component", e.name, "operation", operation, "sql", query)

	rows, err := fn(ctx)
	duration := time.Since(start)

	if span != nil {
		span.SetAttributes(attribute.Int64("db.rows", rows))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	if e.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.statementCounter.WithLabelValues(operation, status).Inc()
		e.metrics.statementDuration.WithLabelValues(operation).Observe(duration.Seconds())
		e.metrics.rowsCounter.WithLabelValues(operation).Add(float64(rows))
	}

	if err != nil {
		e.logger.ErrorContext(ctx, "sql failed",
			"component", e.name,
			"operation", operation,
			"durationMs", duration.Milliseconds(),
			"error", err.Error(),
		)
		return err
	}
	e.logger.InfoContext(ctx, "sql completed",
		"component", e.name,
		"operation", operation,
		"rows", rows,
		"durationMs", duration.Milliseconds(),
	)
	return nil
}
