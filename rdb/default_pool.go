package rdb

import (
	"context"
	"sync"
)

var (
	defaultPoolMu sync.Mutex
	defaultPool   *Pool
)

// CreatePool 创建进程级连接池，已存在未销毁的连接池时返回 ErrPoolAlreadyInitialized
func CreatePool(ctx context.Context, options *PoolOptions) (*Pool, error) {
	defaultPoolMu.Lock()
	defer defaultPoolMu.Unlock()

	if defaultPool != nil {
		return nil, ErrPoolAlreadyInitialized
	}
	pool, err := NewPoolWithOptions(ctx, options)
	if err != nil {
		return nil, err
	}
	defaultPool = pool
	return pool, nil
}

func DefaultPool() (*Pool, error) {
	defaultPoolMu.Lock()
	defer defaultPoolMu.Unlock()

	if defaultPool == nil {
		return nil, ErrPoolNotInitialized
	}
	return defaultPool, nil
}

// DestroyPool 等待借出的连接归还后关闭进程级连接池，未创建时返回 ErrPoolNotInitialized
func DestroyPool(ctx context.Context) error {
	defaultPoolMu.Lock()
	pool := defaultPool
	defaultPool = nil
	defaultPoolMu.Unlock()

	if pool == nil {
		return ErrPoolNotInitialized
	}
	return pool.Close(ctx)
}
