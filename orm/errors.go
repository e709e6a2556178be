package orm

import "github.com/pkg/errors"

var (
	// ErrSchema 表声明不合法，注册失败，表不可用
	ErrSchema = errors.New("schema error")
	// ErrQuery 查询参数不合法，例如 limit 的形式不对
	ErrQuery = errors.New("query error")
	// ErrAnomaly 写语句执行成功但影响行数不为 1，仅在 WithStrictAffectedRows 时返回
	ErrAnomaly = errors.New("affected rows anomaly")
)
