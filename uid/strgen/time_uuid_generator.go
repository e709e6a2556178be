package strgen

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TimeUUIDOptions struct {
	// 追加在末尾的固定后缀
	Suffix string `cfg:"suffix" def:"000"`
}

// TimeUUIDGenerator 生成 15 位毫秒时间戳 + 32 位十六进制 uuid + 后缀的 ID
// 同一进程内生成的 ID 按字典序大致等于生成顺序
type TimeUUIDGenerator struct {
	suffix string
	now    func() time.Time
}

func NewTimeUUIDGeneratorWithOptions(options *TimeUUIDOptions) *TimeUUIDGenerator {
	suffix := "000"
	if options != nil && options.Suffix != "" {
		suffix = options.Suffix
	}
	return &TimeUUIDGenerator{suffix: suffix, now: time.Now}
}

func (g *TimeUUIDGenerator) Generate() string {
	u := uuid.New()
	return fmt.Sprintf("%015d%s%s", g.now().UnixMilli(), hex.EncodeToString(u[:]), g.suffix)
}
