package decoder

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/hatlonely/orm/cfg/storage"
	"github.com/pkg/errors"
)

// JsonDecoder 允许 // 与 /* */ 注释以及尾随逗号
type JsonDecoder struct{}

func NewJsonDecoder() *JsonDecoder {
	return &JsonDecoder{}
}

func (d *JsonDecoder) Decode(data []byte) (storage.Storage, error) {
	var result any
	if err := json.Unmarshal(preprocess(data), &result); err != nil {
		return nil, errors.Wrap(err, "json.Unmarshal failed")
	}
	return storage.NewMapStorage(result), nil
}

var trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)

// preprocess 移除字符串以外的注释和尾随逗号
func preprocess(data []byte) []byte {
	var b strings.Builder
	b.Grow(len(data))

	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '/' && i+1 < len(data) && data[i+1] == '/' {
			for i < len(data) && data[i] != '\n' {
				i++
			}
			if i < len(data) {
				b.WriteByte('\n')
			}
			continue
		}
		if c == '/' && i+1 < len(data) && data[i+1] == '*' {
			i += 2
			for i+1 < len(data) && !(data[i] == '*' && data[i+1] == '/') {
				i++
			}
			i++
			continue
		}

		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
	}

	return []byte(trailingCommaRegex.ReplaceAllString(b.String(), "$1"))
}
