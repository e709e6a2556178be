package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hatlonely/orm/ref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type poolOptions struct {
	Driver         string        `cfg:"driver" def:"mysql" validate:"oneof=mysql sqlite3"`
	Host           string        `cfg:"host" def:"localhost"`
	Port           int           `cfg:"port" def:"3306"`
	Database       string        `cfg:"db"`
	Autocommit     *bool         `cfg:"autocommit" def:"true"`
	MinSize        int           `cfg:"minSize" def:"1" validate:"gte=0"`
	MaxSize        int           `cfg:"maxSize" def:"10" validate:"gtefield=MinSize"`
	AcquireTimeout time.Duration `cfg:"acquireTimeout"`
}

type appOptions struct {
	Pool   poolOptions      `cfg:"pool"`
	Logger *ref.TypeOptions `cfg:"logger"`
}

func writeFile(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{
			name:     "yaml",
			filename: "app.yaml",
			content: `
pool:
  driver: sqlite3
  db: test.db
  autocommit: false
  maxSize: 4
  acquireTimeout: 2s
`,
		},
		{
			name:     "json",
			filename: "app.json",
			content: `{
  // 连接池
  "pool": {
    "driver": "sqlite3",
    "db": "test.db",
    "autocommit": false,
    "maxSize": 4,
    "acquireTimeout": "2s", /* 获取连接超时 */
  },
}`,
		},
		{
			name:     "toml",
			filename: "app.toml",
			content: `
[pool]
driver = "sqlite3"
db = "test.db"
autocommit = false
maxSize = 4
acquireTimeout = "2s"
`,
		},
		{
			name:     "ini",
			filename: "app.ini",
			content: `
[pool]
driver = sqlite3
db = test.db
autocommit = false
maxSize = 4
acquireTimeout = 2s
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConfig(writeFile(t, tt.filename, tt.content))
			require.NoError(t, err)

			var options appOptions
			require.NoError(t, c.ConvertTo(&options))

			assert.Equal(t, "sqlite3", options.Pool.Driver)
			assert.Equal(t, "test.db", options.Pool.Database)
			assert.Equal(t, "localhost", options.Pool.Host)
			assert.Equal(t, 3306, options.Pool.Port)
			require.NotNil(t, options.Pool.Autocommit)
			assert.False(t, *options.Pool.Autocommit)
			assert.Equal(t, 1, options.Pool.MinSize)
			assert.Equal(t, 4, options.Pool.MaxSize)
			assert.Equal(t, 2*time.Second, options.Pool.AcquireTimeout)
		})
	}
}

func TestNewConfigErrors(t *testing.T) {
	_, err := NewConfig("app.xml")
	assert.Error(t, err)

	_, err = NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = NewConfig(writeFile(t, "bad.yaml", "pool: [1, 2"))
	assert.Error(t, err)
}

func TestConfigSubAndValidate(t *testing.T) {
	c := NewConfigWithData(map[string]any{
		"pools": []any{
			map[string]any{"driver": "mysql", "minSize": 2, "maxSize": 8},
			map[string]any{"driver": "oracle"},
			map[string]any{"minSize": 5, "maxSize": 2},
		},
	})

	var options poolOptions
	require.NoError(t, c.Sub("pools[0]").ConvertTo(&options))
	assert.Equal(t, 2, options.MinSize)
	assert.Equal(t, 8, options.MaxSize)

	assert.Error(t, c.Sub("pools[1]").ConvertTo(&poolOptions{}))
	assert.Error(t, c.Sub("pools[2]").ConvertTo(&poolOptions{}))

	var empty poolOptions
	require.NoError(t, c.Sub("pools[9]").ConvertTo(&empty))
	assert.Equal(t, "mysql", empty.Driver)
	assert.Equal(t, 10, empty.MaxSize)
}

type componentOptions struct {
	Name    string `cfg:"name" validate:"required"`
	Workers int    `cfg:"workers" def:"4"`
}

type component struct {
	options *componentOptions
}

func newComponentWithOptions(options *componentOptions) *component {
	return &component{options: options}
}

func TestConfigAsComponentOptions(t *testing.T) {
	ref.MustRegister("github.com/hatlonely/orm/cfg", "Component", newComponentWithOptions)

	c := NewConfigWithData(map[string]any{
		"logger": map[string]any{
			"namespace": "github.com/hatlonely/orm/cfg",
			"type":      "Component",
			"options":   map[string]any{"name": "demo"},
		},
	})

	var options appOptions
	require.NoError(t, c.ConvertTo(&options))
	require.NotNil(t, options.Logger)

	obj, err := ref.NewWithOptions(options.Logger)
	require.NoError(t, err)
	comp := obj.(*component)
	assert.Equal(t, "demo", comp.options.Name)
	assert.Equal(t, 4, comp.options.Workers)

	obj, err = ref.New("github.com/hatlonely/orm/cfg", "Component", c.Sub("logger.options"))
	require.NoError(t, err)
	assert.Equal(t, "demo", obj.(*component).options.Name)

	_, err = ref.New("github.com/hatlonely/orm/cfg", "Component", NewConfigWithData(map[string]any{}))
	assert.Error(t, err)
}
