package log

import (
	"github.com/hatlonely/orm/log/logger"
	"github.com/hatlonely/orm/ref"
	"github.com/pkg/errors"
)

var defaultLogger logger.Logger

func init() {
	// 默认向终端输出 text 格式日志
	l, err := logger.NewSLogWithOptions(&logger.SLogOptions{
		Level:  "info",
		Format: "text",
	})
	if err != nil {
		panic("failed to initialize default logger: " + err.Error())
	}
	defaultLogger = l
}

func Default() logger.Logger {
	return defaultLogger
}

// SetDefault 替换进程默认日志器，nil 被忽略
func SetDefault(l logger.Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// NewLoggerWithOptions 通过 ref 创建日志器，options 为 nil 时返回默认日志器
func NewLoggerWithOptions(options *ref.TypeOptions) (logger.Logger, error) {
	if options == nil || options.Type == "" {
		return Default(), nil
	}

	obj, err := ref.NewWithOptions(options)
	if err != nil {
		return nil, errors.WithMessage(err, "ref.New failed")
	}
	l, ok := obj.(logger.Logger)
	if !ok {
		return nil, errors.Errorf("%T does not implement Logger interface", obj)
	}
	return l, nil
}
