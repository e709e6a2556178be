package rdb

import (
	"context"
	"database/sql/driver"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/hatlonely/orm/cfg"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

type PoolOptions struct {
	// 驱动：mysql, sqlite3
	Driver string `cfg:"driver" def:"mysql" validate:"oneof=mysql sqlite3"`
	// 不为空时忽略 host、port、user、password、db、charset
	DSN      string `cfg:"dsn"`
	Host     string `cfg:"host" def:"localhost"`
	Port     int    `cfg:"port" def:"3306" validate:"gte=0,lte=65535"`
	User     string `cfg:"user"`
	Password string `cfg:"password"`
	// sqlite3 下为数据库文件路径
	Database string `cfg:"db"`
	Charset  string `cfg:"charset" def:"utf8"`
	// Executor.Exec 的默认提交方式
	Autocommit *bool `cfg:"autocommit" def:"true"`
	MinSize    int   `cfg:"minSize" def:"1" validate:"gte=0"`
	MaxSize    int   `cfg:"maxSize" def:"10" validate:"gt=0,gtefield=MinSize"`
	// 获取连接的最长等待时间，0 表示一直等待
	AcquireTimeout  time.Duration `cfg:"acquireTimeout"`
	ConnMaxLifetime time.Duration `cfg:"connMaxLifetime"`
	EnableMetrics   bool          `cfg:"enableMetrics"`
	Name            string        `cfg:"name" def:"orm"`
}

// Pool 有界连接池，同一时刻借出的连接数不超过 MaxSize，超出的调用方阻塞等待
type Pool struct {
	db             *sqlx.DB
	sem            *semaphore.Weighted
	minSize        int
	maxSize        int
	autocommit     bool
	acquireTimeout time.Duration
	metrics        *poolMetrics

	mu       sync.RWMutex
	closed   bool
	inFlight sync.WaitGroup

	checkedOut atomic.Int64
	peak       atomic.Int64
}

type PoolStats struct {
	MaxSize        int
	MinSize        int
	CheckedOut     int
	PeakCheckedOut int
	Open           int
	Idle           int
}

func NewPoolWithOptions(ctx context.Context, options *PoolOptions) (*Pool, error) {
	opts, err := normalizePoolOptions(options)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(opts)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(opts.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s failed", opts.Driver)
	}
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pool, err := newPool(ctx, db, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return pool, nil
}

// NewPoolWithDB 使用已经打开的数据库句柄创建连接池，连接池关闭时会关闭 db
func NewPoolWithDB(ctx context.Context, db *sqlx.DB, options *PoolOptions) (*Pool, error) {
	opts, err := normalizePoolOptions(options)
	if err != nil {
		return nil, err
	}
	return newPool(ctx, db, opts)
}

func normalizePoolOptions(options *PoolOptions) (*PoolOptions, error) {
	opts := &PoolOptions{}
	if options != nil {
		*opts = *options
	}
	if err := cfg.SetDefaults(opts); err != nil {
		return nil, errors.WithMessage(err, "set pool defaults failed")
	}
	if opts.MaxSize < opts.MinSize {
		return nil, errors.WithMessagef(ErrPool, "maxSize %d is less than minSize %d", opts.MaxSize, opts.MinSize)
	}
	return opts, nil
}

func buildDSN(options *PoolOptions) (string, error) {
	if options.DSN != "" {
		return options.DSN, nil
	}

	switch options.Driver {
	case "mysql":
		c := mysql.NewConfig()
		c.User = options.User
		c.Passwd = options.Password
		c.Net = "tcp"
		c.Addr = net.JoinHostPort(options.Host, strconv.Itoa(options.Port))
		c.DBName = options.Database
		c.ParseTime = true
		c.Params = map[string]string{"charset": options.Charset}
		return c.FormatDSN(), nil
	case "sqlite3":
		if options.Database == "" {
			return "", errors.WithMessage(ErrPool, "sqlite3 requires db")
		}
		return options.Database, nil
	default:
		return "", errors.WithMessagef(ErrPool, "unsupported driver: %s", options.Driver)
	}
}

func newPool(ctx context.Context, db *sqlx.DB, options *PoolOptions) (*Pool, error) {
	db.SetMaxOpenConns(options.MaxSize)
	db.SetMaxIdleConns(options.MaxSize)

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping database failed")
	}

	// 预先建立 minSize 个连接，归还后留在空闲列表中
	conns := make([]*sqlx.Conn, 0, options.MinSize)
	defer func() {
		for _, c := range conns {
			_ = c.Close()
		}
	}()
	for i := 0; i < options.MinSize; i++ {
		c, err := db.Connx(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "establish connection failed")
		}
		conns = append(conns, c)
	}

	p := &Pool{
		db:             db,
		sem:            semaphore.NewWeighted(int64(options.MaxSize)),
		minSize:        options.MinSize,
		maxSize:        options.MaxSize,
		autocommit:     options.Autocommit == nil || *options.Autocommit,
		acquireTimeout: options.AcquireTimeout,
	}
	if options.EnableMetrics {
		p.metrics = newPoolMetrics(options.Name)
	}
	return p, nil
}

// Acquire 借出一个连接，使用完毕后必须调用 Conn.Release
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}
	p.inFlight.Add(1)
	p.mu.RUnlock()

	conn, err := p.acquire(ctx)
	if err != nil {
		p.inFlight.Done()
		return nil, err
	}
	return conn, nil
}

func (p *Pool) acquire(ctx context.Context) (*Conn, error) {
	start := time.Now()

	waitCtx := ctx
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() == nil {
			return nil, ErrAcquireTimeout
		}
		return nil, errors.Wrap(ctx.Err(), "acquire connection canceled")
	}

	c, err := p.db.Connx(waitCtx)
	if err != nil {
		p.sem.Release(1)
		if ctx.Err() == nil && waitCtx.Err() != nil {
			return nil, ErrAcquireTimeout
		}
		return nil, errors.Wrap(err, "get connection failed")
	}

	n := p.checkedOut.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if p.metrics != nil {
		p.metrics.checkedOut.Inc()
		p.metrics.acquireDuration.Observe(time.Since(start).Seconds())
	}

	return &Conn{Conn: c, pool: p}, nil
}

func (p *Pool) release(c *Conn) {
	if c.broken.Load() {
		// 状态不确定的连接直接丢弃
		_ = c.Conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	_ = c.Conn.Close()

	p.checkedOut.Add(-1)
	if p.metrics != nil {
		p.metrics.checkedOut.Dec()
	}
	p.sem.Release(1)
	p.inFlight.Done()
}

// Close 拒绝新的借出请求，等待已借出的连接归还后关闭底层连接
// ctx 结束时不再等待，直接关闭
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.inFlight.Wait()
		close(done)
	}()

	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = errors.Wrap(ctx.Err(), "wait in-flight connections failed")
	}

	if err := p.db.Close(); err != nil {
		return errors.Wrap(err, "close database failed")
	}
	return waitErr
}

func (p *Pool) Stats() PoolStats {
	s := p.db.Stats()
	return PoolStats{
		MaxSize:        p.maxSize,
		MinSize:        p.minSize,
		CheckedOut:     int(p.checkedOut.Load()),
		PeakCheckedOut: int(p.peak.Load()),
		Open:           s.OpenConnections,
		Idle:           s.Idle,
	}
}

func (p *Pool) DriverName() string {
	return p.db.DriverName()
}

func (p *Pool) Autocommit() bool {
	return p.autocommit
}

// Conn 借出的连接，同一时刻只能被一个调用方使用
type Conn struct {
	*sqlx.Conn
	pool     *Pool
	broken   atomic.Bool
	released atomic.Bool
}

// MarkBroken 归还时丢弃该连接而不是放回空闲列表
func (c *Conn) MarkBroken() {
	c.broken.Store(true)
}

// Release 归还连接，多次调用只生效一次
func (c *Conn) Release() {
	if c.released.CompareAndSwap(false, true) {
		c.pool.release(c)
	}
}
