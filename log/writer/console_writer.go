package writer

import (
	"io"
	"os"
)

// ConsoleWriterOptions 控制台输出配置
type ConsoleWriterOptions struct {
	// 输出目标：stdout, stderr
	Target string `cfg:"target" def:"stdout" validate:"omitempty,oneof=stdout stderr"`
}

// ConsoleWriter 控制台输出器，Close 不会关闭标准输出
type ConsoleWriter struct {
	writer io.Writer
}

func NewConsoleWriterWithOptions(options *ConsoleWriterOptions) (*ConsoleWriter, error) {
	if options != nil && options.Target == "stderr" {
		return &ConsoleWriter{writer: os.Stderr}, nil
	}
	return &ConsoleWriter{writer: os.Stdout}, nil
}

func (c *ConsoleWriter) Write(p []byte) (int, error) {
	return c.writer.Write(p)
}

func (c *ConsoleWriter) Close() error {
	return nil
}
