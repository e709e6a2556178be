package cfg

import (
	"os"

	"github.com/hatlonely/orm/cfg/decoder"
	"github.com/hatlonely/orm/cfg/def"
	"github.com/hatlonely/orm/cfg/storage"
	"github.com/pkg/errors"
)

// Config 只读的配置树，实现了 ref.Convertable，可以直接作为组件的 options
type Config struct {
	storage storage.Storage
}

// NewConfig 读取配置文件，根据扩展名选择 yaml、json、toml、ini 解码器
func NewConfig(filename string) (*Config, error) {
	d, err := decoder.NewDecoderByFilename(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s failed", filename)
	}
	return NewConfigWithDecoder(data, d)
}

func NewConfigWithDecoder(data []byte, d decoder.Decoder) (*Config, error) {
	s, err := d.Decode(data)
	if err != nil {
		return nil, errors.WithMessage(err, "decode config failed")
	}
	return &Config{storage: s}, nil
}

// NewConfigWithData 直接使用内存中的 map/slice 树
func NewConfigWithData(data map[string]any) *Config {
	return &Config{storage: storage.NewMapStorage(data)}
}

func (c *Config) Sub(key string) *Config {
	return &Config{storage: c.storage.Sub(key)}
}

// ConvertTo 转换后按 def tag 填充默认值，再按 validate tag 校验
func (c *Config) ConvertTo(object any) error {
	return c.storage.ConvertTo(object)
}

// SetDefaults 为没有经过配置文件的结构体填充 def 默认值
func SetDefaults(object any) error {
	return def.SetDefaults(object)
}
