package decoder

import (
	"path/filepath"
	"strings"

	"github.com/hatlonely/orm/cfg/storage"
	"github.com/pkg/errors"
)

// Decoder 把配置文件内容解码成 Storage
type Decoder interface {
	Decode(data []byte) (storage.Storage, error)
}

// NewDecoderByFilename 根据文件扩展名选择解码器
func NewDecoderByFilename(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return NewYamlDecoder(), nil
	case ".json":
		return NewJsonDecoder(), nil
	case ".toml":
		return NewTomlDecoder(), nil
	case ".ini":
		return NewIniDecoder(), nil
	default:
		return nil, errors.Errorf("unsupported config file extension: %q", filepath.Ext(filename))
	}
}
