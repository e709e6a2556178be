package log

import (
	"testing"

	"github.com/hatlonely/orm/log/logger"
	"github.com/hatlonely/orm/ref"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewLoggerWithOptions(t *testing.T) {
	Convey("测试 NewLoggerWithOptions", t, func() {
		Convey("nil 返回默认日志器", func() {
			l, err := NewLoggerWithOptions(nil)
			So(err, ShouldBeNil)
			So(l, ShouldEqual, Default())
		})

		Convey("通过 ref 创建 SLog", func() {
			l, err := NewLoggerWithOptions(&ref.TypeOptions{
				Namespace: "github.com/hatlonely/orm/log/logger",
				Type:      "SLog",
				Options:   &logger.SLogOptions{Level: "warn", Format: "json"},
			})
			So(err, ShouldBeNil)
			So(l, ShouldNotBeNil)
		})

		Convey("未注册的类型", func() {
			_, err := NewLoggerWithOptions(&ref.TypeOptions{Namespace: "unknown", Type: "Logger"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSetDefault(t *testing.T) {
	Convey("测试 SetDefault", t, func() {
		origin := Default()
		defer SetDefault(origin)

		SetDefault(nil)
		So(Default(), ShouldEqual, origin)

		SetDefault(logger.Nop{})
		So(Default(), ShouldResemble, logger.Logger(logger.Nop{}))
	})
}
