package rdb

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrPool 连接池相关错误，以下错误均可用 errors.Is(err, ErrPool) 匹配
	ErrPool                   = errors.New("pool error")
	ErrPoolNotInitialized     = &poolError{msg: "pool not initialized"}
	ErrPoolClosed             = &poolError{msg: "pool closed"}
	ErrPoolAlreadyInitialized = &poolError{msg: "pool already initialized"}
	ErrAcquireTimeout         = &poolError{msg: "acquire connection timeout"}

	// ErrExecution 语句执行失败，ExecutionError 均可用 errors.Is(err, ErrExecution) 匹配
	ErrExecution        = errors.New("execution error")
	ErrStatementTimeout = errors.New("statement timeout")
)

type poolError struct {
	msg string
}

func (e *poolError) Error() string {
	return e.msg
}

func (e *poolError) Is(target error) bool {
	return target == ErrPool
}

// ExecutionError 携带失败的语句和驱动返回的原始错误
type ExecutionError struct {
	Query   string
	Err     error
	Timeout bool
}

func (e *ExecutionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("statement timeout: %v, query: %s", e.Err, e.Query)
	}
	return fmt.Sprintf("execute failed: %v, query: %s", e.Err, e.Query)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution || (e.Timeout && target == ErrStatementTimeout)
}

func newExecutionError(ctx context.Context, query string, err error) error {
	if err == nil {
		return nil
	}
	// 调用方主动取消不算超时
	timeout := errors.Is(ctx.Err(), context.DeadlineExceeded)
	return &ExecutionError{Query: query, Err: err, Timeout: timeout}
}
