package decoder

import (
	"strconv"
	"strings"

	"github.com/hatlonely/orm/cfg/storage"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// IniDecoder 每个 section 解码为一层 map，"a.b" 形式的 section 名展开为嵌套 map
// 值会尝试转换成 bool、int64、float64
type IniDecoder struct{}

func NewIniDecoder() *IniDecoder {
	return &IniDecoder{}
}

func (d *IniDecoder) Decode(data []byte) (storage.Storage, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:         true,
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return nil, errors.Wrap(err, "ini.Load failed")
	}

	result := map[string]any{}
	for _, section := range file.Sections() {
		target := result
		if name := section.Name(); name != ini.DefaultSection {
			for _, part := range strings.Split(name, ".") {
				next, ok := target[part].(map[string]any)
				if !ok {
					next = map[string]any{}
					target[part] = next
				}
				target = next
			}
		}
		for _, key := range section.Keys() {
			target[key.Name()] = parseIniValue(key.String())
		}
	}
	return storage.NewMapStorage(result), nil
}

func parseIniValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil && (strings.EqualFold(value, "true") || strings.EqualFold(value, "false")) {
		return b
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
