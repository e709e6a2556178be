package strgen

import (
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type UUIDOptions struct {
	// 版本：v1, v4, v6, v7
	Version string `cfg:"version" def:"v4" validate:"omitempty,oneof=v1 v4 v6 v7"`
	// 是否保留连字符
	WithHyphens bool `cfg:"withHyphens"`
}

type UUIDGenerator struct {
	newUUID     func() (uuid.UUID, error)
	withHyphens bool
}

func NewUUIDGeneratorWithOptions(options *UUIDOptions) (*UUIDGenerator, error) {
	if options == nil {
		options = &UUIDOptions{}
	}

	g := &UUIDGenerator{withHyphens: options.WithHyphens}
	switch options.Version {
	case "", "v4":
		g.newUUID = uuid.NewRandom
	case "v1":
		g.newUUID = uuid.NewUUID
	case "v6":
		g.newUUID = uuid.NewV6
	case "v7":
		g.newUUID = uuid.NewV7
	default:
		return nil, errors.Errorf("unsupported uuid version: %s", options.Version)
	}
	return g, nil
}

func (g *UUIDGenerator) Generate() string {
	u, err := g.newUUID()
	if err != nil {
		// 时钟或随机源异常时退回 v4
		u = uuid.New()
	}
	if g.withHyphens {
		return u.String()
	}
	return hex.EncodeToString(u[:])
}
