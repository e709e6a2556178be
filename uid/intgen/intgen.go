package intgen

import (
	"github.com/hatlonely/orm/ref"
	"github.com/pkg/errors"
)

func init() {
	ref.MustRegisterT[SnowflakeGenerator](NewSnowflakeGeneratorWithOptions)
	ref.MustRegisterT[RedisGenerator](NewRedisGeneratorWithOptions)
}

// IntGenerator 生成 64 位整数 ID，常用作 BIGINT 主键的默认值
type IntGenerator interface {
	Generate() int64
}

func NewIntGeneratorWithOptions(options *ref.TypeOptions) (IntGenerator, error) {
	obj, err := ref.NewWithOptions(options)
	if err != nil {
		return nil, errors.WithMessage(err, "ref.New failed")
	}
	generator, ok := obj.(IntGenerator)
	if !ok {
		return nil, errors.Errorf("%T is not an IntGenerator", obj)
	}
	return generator, nil
}
