package orm

import (
	"strings"

	"github.com/pkg/errors"
)

type query struct {
	where   string
	args    []any
	orderBy string
	limit   any
}

type QueryOption func(*query)

// Where 追加 where 条件，clause 中使用 ? 占位
func Where(clause string, args ...any) QueryOption {
	return func(q *query) {
		q.where = clause
		q.args = args
	}
}

func OrderBy(clause string) QueryOption {
	return func(q *query) { q.orderBy = clause }
}

// Limit 最多返回 n 行
func Limit(n int) QueryOption {
	return WithLimit(n)
}

// Paginate 跳过 offset 行后最多返回 count 行
func Paginate(offset int, count int) QueryOption {
	return WithLimit([2]int{offset, count})
}

// WithLimit 支持 int、[2]int、长度为 2 的 []int 和 *Page，其他形式在执行时返回 ErrQuery
func WithLimit(limit any) QueryOption {
	return func(q *query) { q.limit = limit }
}

func newQuery(opts []QueryOption) *query {
	q := &query{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// build 在 base 后拼接 where/order by/limit，返回语句、参数和最多返回的行数
func (q *query) build(base string) (string, []any, int, error) {
	var sb strings.Builder
	sb.WriteString(base)
	args := append([]any{}, q.args...)

	if q.where != "" {
		sb.WriteString(" where ")
		sb.WriteString(q.where)
	}
	if q.orderBy != "" {
		sb.WriteString(" order by ")
		sb.WriteString(q.orderBy)
	}

	if q.limit == nil {
		return sb.String(), args, 0, nil
	}

	offset, count, ranged, err := parseLimit(q.limit)
	if err != nil {
		return "", nil, 0, err
	}
	if ranged {
		sb.WriteString(" limit ?, ?")
		args = append(args, offset, count)
	} else {
		sb.WriteString(" limit ?")
		args = append(args, count)
	}
	return sb.String(), args, count, nil
}

func parseLimit(limit any) (offset int, count int, ranged bool, err error) {
	switch v := limit.(type) {
	case int:
		count = v
	case int64:
		count = int(v)
	case int32:
		count = int(v)
	case [2]int:
		offset, count, ranged = v[0], v[1], true
	case []int:
		if len(v) != 2 {
			return 0, 0, false, errors.WithMessagef(ErrQuery, "invalid limit %v", v)
		}
		offset, count, ranged = v[0], v[1], true
	case *Page:
		if v == nil {
			return 0, 0, false, errors.WithMessage(ErrQuery, "invalid limit: nil page")
		}
		offset, count, ranged = v.Offset, v.Limit, true
	case Page:
		offset, count, ranged = v.Offset, v.Limit, true
	default:
		return 0, 0, false, errors.WithMessagef(ErrQuery, "invalid limit %v of type %T", limit, limit)
	}

	if offset < 0 || count < 0 {
		return 0, 0, false, errors.WithMessagef(ErrQuery, "invalid limit %v", limit)
	}
	return offset, count, ranged, nil
}
