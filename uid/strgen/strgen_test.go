package strgen

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hatlonely/orm/ref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	hexRegex := regexp.MustCompile(`^[0-9a-f]{32}$`)

	tests := []struct {
		name    string
		version string
		want    uuid.Version
	}{
		{name: "default", version: "", want: 4},
		{name: "v1", version: "v1", want: 1},
		{name: "v4", version: "v4", want: 4},
		{name: "v6", version: "v6", want: 6},
		{name: "v7", version: "v7", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewUUIDGeneratorWithOptions(&UUIDOptions{Version: tt.version})
			require.NoError(t, err)

			id := g.Generate()
			assert.Regexp(t, hexRegex, id)

			u, err := uuid.Parse(id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.Version())
		})
	}

	t.Run("with hyphens", func(t *testing.T) {
		g, err := NewUUIDGeneratorWithOptions(&UUIDOptions{Version: "v7", WithHyphens: true})
		require.NoError(t, err)
		id := g.Generate()
		assert.Len(t, id, 36)
		assert.Equal(t, byte('7'), id[14])
	})

	t.Run("unsupported version", func(t *testing.T) {
		_, err := NewUUIDGeneratorWithOptions(&UUIDOptions{Version: "v9"})
		assert.Error(t, err)
	})

	t.Run("nil options", func(t *testing.T) {
		g, err := NewUUIDGeneratorWithOptions(nil)
		require.NoError(t, err)
		assert.NotEqual(t, g.Generate(), g.Generate())
	})
}

func TestTimeUUIDGenerator(t *testing.T) {
	g := NewTimeUUIDGeneratorWithOptions(nil)
	g.now = func() time.Time { return time.UnixMilli(1700000000123) }

	id := g.Generate()
	assert.Len(t, id, 50)
	assert.Equal(t, "001700000000123", id[:15])
	assert.Regexp(t, `^[0-9a-f]{32}$`, id[15:47])
	assert.Equal(t, "000", id[47:])
	assert.NotEqual(t, id, g.Generate())

	t.Run("custom suffix", func(t *testing.T) {
		g := NewTimeUUIDGeneratorWithOptions(&TimeUUIDOptions{Suffix: "001"})
		assert.Equal(t, "001", g.Generate()[47:])
	})

	t.Run("ordered by time", func(t *testing.T) {
		g := NewTimeUUIDGeneratorWithOptions(nil)
		ms := int64(1700000000000)
		g.now = func() time.Time { ms++; return time.UnixMilli(ms) }
		a, b := g.Generate(), g.Generate()
		assert.Less(t, a, b)
	})
}

func TestNewStrGeneratorWithOptions(t *testing.T) {
	t.Run("time uuid", func(t *testing.T) {
		g, err := NewStrGeneratorWithOptions(&ref.TypeOptions{
			Namespace: "github.com/hatlonely/orm/uid/strgen",
			Type:      "TimeUUIDGenerator",
			Options:   &TimeUUIDOptions{},
		})
		require.NoError(t, err)
		assert.Len(t, g.Generate(), 50)
	})

	t.Run("uuid", func(t *testing.T) {
		g, err := NewStrGeneratorWithOptions(&ref.TypeOptions{
			Namespace: "github.com/hatlonely/orm/uid/strgen",
			Type:      "UUIDGenerator",
			Options:   &UUIDOptions{Version: "v7"},
		})
		require.NoError(t, err)
		assert.Len(t, g.Generate(), 32)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewStrGeneratorWithOptions(&ref.TypeOptions{Namespace: "github.com/hatlonely/orm/uid/strgen", Type: "Unknown"})
		assert.Error(t, err)
	})
}
