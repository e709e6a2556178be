package uid

import (
	"github.com/hatlonely/orm/ref"
	"github.com/hatlonely/orm/uid/intgen"
	"github.com/hatlonely/orm/uid/strgen"
)

// NewIntGenerator 默认使用 snowflake
func NewIntGenerator() intgen.IntGenerator {
	return intgen.NewSnowflakeGeneratorWithOptions(nil)
}

// NewStrGenerator 默认生成带时间前缀的 ID，按字典序大致等于创建顺序
func NewStrGenerator() strgen.StrGenerator {
	return strgen.NewTimeUUIDGeneratorWithOptions(nil)
}

func NewIntGeneratorWithOptions(options *ref.TypeOptions) (intgen.IntGenerator, error) {
	if options == nil || options.Type == "" {
		return NewIntGenerator(), nil
	}
	return intgen.NewIntGeneratorWithOptions(options)
}

func NewStrGeneratorWithOptions(options *ref.TypeOptions) (strgen.StrGenerator, error) {
	if options == nil || options.Type == "" {
		return NewStrGenerator(), nil
	}
	return strgen.NewStrGeneratorWithOptions(options)
}
