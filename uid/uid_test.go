package uid

import (
	"testing"

	"github.com/hatlonely/orm/ref"
	"github.com/hatlonely/orm/uid/strgen"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultGenerators(t *testing.T) {
	Convey("默认生成器", t, func() {
		Convey("整数 ID 唯一且为正", func() {
			g := NewIntGenerator()
			ids := map[int64]bool{}
			for i := 0; i < 1000; i++ {
				id := g.Generate()
				So(id, ShouldBeGreaterThan, 0)
				So(ids[id], ShouldBeFalse)
				ids[id] = true
			}
		})

		Convey("字符串 ID 唯一且长度为 50", func() {
			g := NewStrGenerator()
			ids := map[string]bool{}
			for i := 0; i < 100; i++ {
				id := g.Generate()
				So(len(id), ShouldEqual, 50)
				So(ids[id], ShouldBeFalse)
				ids[id] = true
			}
		})
	})
}

func TestNewWithOptions(t *testing.T) {
	Convey("通过 TypeOptions 创建生成器", t, func() {
		Convey("nil 使用默认生成器", func() {
			ig, err := NewIntGeneratorWithOptions(nil)
			So(err, ShouldBeNil)
			So(ig, ShouldNotBeNil)

			sg, err := NewStrGeneratorWithOptions(nil)
			So(err, ShouldBeNil)
			So(sg, ShouldNotBeNil)
		})

		Convey("指定 UUIDGenerator", func() {
			sg, err := NewStrGeneratorWithOptions(&ref.TypeOptions{
				Namespace: "github.com/hatlonely/orm/uid/strgen",
				Type:      "UUIDGenerator",
				Options:   &strgen.UUIDOptions{Version: "v4", WithHyphens: true},
			})
			So(err, ShouldBeNil)
			So(len(sg.Generate()), ShouldEqual, 36)
		})

		Convey("未注册的类型", func() {
			_, err := NewIntGeneratorWithOptions(&ref.TypeOptions{Namespace: "unknown", Type: "Generator"})
			So(err, ShouldNotBeNil)
		})
	})
}
