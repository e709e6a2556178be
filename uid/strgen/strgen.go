package strgen

import (
	"github.com/hatlonely/orm/ref"
	"github.com/pkg/errors"
)

func init() {
	ref.MustRegisterT[UUIDGenerator](NewUUIDGeneratorWithOptions)
	ref.MustRegisterT[TimeUUIDGenerator](NewTimeUUIDGeneratorWithOptions)
}

// StrGenerator 生成字符串 ID，常用作 VARCHAR 主键的默认值
type StrGenerator interface {
	Generate() string
}

func NewStrGeneratorWithOptions(options *ref.TypeOptions) (StrGenerator, error) {
	obj, err := ref.NewWithOptions(options)
	if err != nil {
		return nil, errors.WithMessage(err, "ref.New failed")
	}
	generator, ok := obj.(StrGenerator)
	if !ok {
		return nil, errors.Errorf("%T is not a StrGenerator", obj)
	}
	return generator, nil
}
