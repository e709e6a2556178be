package writer

import (
	"io"

	"github.com/hatlonely/orm/ref"
)

func init() {
	ref.MustRegisterT[ConsoleWriter](NewConsoleWriterWithOptions)
	ref.MustRegisterT[FileWriter](NewFileWriterWithOptions)
}

// Writer 日志输出器接口
type Writer interface {
	io.Writer
	io.Closer
}
