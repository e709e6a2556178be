package orm

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewField(t *testing.T) {
	Convey("测试 NewField", t, func() {
		Convey("默认值和 DDL", func() {
			So(StringField().DDL, ShouldEqual, "varchar(100)")
			So(StringField().Default, ShouldBeNil)
			So(BooleanField().Default, ShouldEqual, false)
			So(IntegerField().Default, ShouldEqual, int64(0))
			So(FloatField().Default, ShouldEqual, 0.0)
			So(TextField().Type, ShouldEqual, TEXT)
			So(StringField(WithDDL("varchar(50)")).DDL, ShouldEqual, "varchar(50)")
		})

		Convey("不合法的存储类型", func() {
			_, err := NewField("BLOB")
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
		})

		Convey("任意存储类型都可以作为主键", func() {
			for _, typ := range []StorageType{VARCHAR, BOOLEAN, BIGINT, REAL, TEXT} {
				f, err := NewField(typ, WithPrimaryKey())
				So(err, ShouldBeNil)
				So(f.PrimaryKey, ShouldBeTrue)
			}
		})

		Convey("默认值函数带参数", func() {
			_, err := NewField(BIGINT, WithDefault(func(n int) int { return n }))
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
		})

		Convey("默认值函数有多个返回值", func() {
			_, err := NewField(BIGINT, WithDefault(func() (int, error) { return 0, nil }))
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
		})

		Convey("合法的列", func() {
			f, err := NewField(BIGINT, WithName("qty"), WithDefault(int64(1)))
			So(err, ShouldBeNil)
			So(f.Name, ShouldEqual, "qty")
			So(f.DDL, ShouldEqual, "bigint")
		})
	})
}

func TestResolveDefault(t *testing.T) {
	Convey("测试 ResolveDefault", t, func() {
		Convey("没有默认值", func() {
			_, ok := StringField().ResolveDefault()
			So(ok, ShouldBeFalse)
		})

		Convey("固定值", func() {
			v, ok := IntegerField(WithDefault(int64(5))).ResolveDefault()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, int64(5))
		})

		Convey("每次调用生成函数", func() {
			n := 0
			f := StringField(WithDefaultFunc(func() any {
				n++
				return n
			}))
			v1, _ := f.ResolveDefault()
			v2, _ := f.ResolveDefault()
			So(v1, ShouldEqual, 1)
			So(v2, ShouldEqual, 2)
		})

		Convey("其他无参函数", func() {
			now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			v, ok := StringField(WithDefault(func() time.Time { return now })).ResolveDefault()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, now)

			v, ok = IntegerField(WithDefault(func() int { return 3 })).ResolveDefault()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 3)
		})

		Convey("当前时间", func() {
			v, ok := FloatField(WithDefaultFunc(Now())).ResolveDefault()
			So(ok, ShouldBeTrue)
			So(v, ShouldHaveSameTypeAs, 0.0)
			So(v.(float64), ShouldBeGreaterThan, 1.6e9)
		})
	})
}

func TestRegister(t *testing.T) {
	Convey("测试 Register", t, func() {
		Convey("生成 SQL 模板", func() {
			table, err := Register("orm.TestRegister.User", []Column{
				{Slot: "id", Field: StringField(WithPrimaryKey(), WithDDL("varchar(50)"))},
				{Slot: "email", Field: StringField()},
				{Slot: "admin", Field: BooleanField()},
				{Slot: "createdAt", Field: FloatField(WithName("created_at"))},
			}, WithTableName("users"))
			So(err, ShouldBeNil)

			So(table.Name(), ShouldEqual, "users")
			So(table.TypeName(), ShouldEqual, "orm.TestRegister.User")
			So(table.PrimaryKey().Name, ShouldEqual, "id")
			So(table.Columns(), ShouldResemble, []string{"id", "email", "admin", "created_at"})
			So(len(table.Fields()), ShouldEqual, 3)
			So(table.SelectSQL(), ShouldEqual, "select `id`, `email`, `admin`, `created_at` from `users`")
			So(table.InsertSQL(), ShouldEqual, "insert into `users` (`email`, `admin`, `created_at`, `id`) values (?, ?, ?, ?)")
			So(table.UpdateSQL(), ShouldEqual, "update `users` set `email`=?, `admin`=?, `created_at`=? where `id`=?")
			So(table.DeleteSQL(), ShouldEqual, "delete from `users` where `id`=?")
			So(table.CreateTableSQL(), ShouldEqual, "create table if not exists `users` (`id` varchar(50) not null, `email` varchar(100), `admin` boolean, `created_at` real, primary key (`id`))")

			f, ok := table.Field("created_at")
			So(ok, ShouldBeTrue)
			So(f.Type, ShouldEqual, REAL)
			_, ok = table.Field("createdAt")
			So(ok, ShouldBeFalse)
		})

		Convey("重复注册返回同一个表", func() {
			columns := []Column{{Slot: "id", Field: IntegerField(WithPrimaryKey())}}
			t1, err := Register("orm.TestRegister.Idempotent", columns)
			So(err, ShouldBeNil)
			t2, err := Register("orm.TestRegister.Idempotent", columns)
			So(err, ShouldBeNil)
			So(t2, ShouldEqual, t1)

			t3, ok := Lookup("orm.TestRegister.Idempotent")
			So(ok, ShouldBeTrue)
			So(t3, ShouldEqual, t1)
			So(t1.Name(), ShouldEqual, "orm.TestRegister.Idempotent")
		})

		Convey("没有主键", func() {
			_, err := Register("orm.TestRegister.NoPK", []Column{{Slot: "name", Field: StringField()}})
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
			_, ok := Lookup("orm.TestRegister.NoPK")
			So(ok, ShouldBeFalse)
		})

		Convey("多个主键", func() {
			_, err := Register("orm.TestRegister.TwoPK", []Column{
				{Slot: "a", Field: StringField(WithPrimaryKey())},
				{Slot: "b", Field: StringField(WithPrimaryKey())},
			})
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
			_, ok := Lookup("orm.TestRegister.TwoPK")
			So(ok, ShouldBeFalse)
		})

		Convey("重复的列名", func() {
			_, err := Register("orm.TestRegister.Duplicate", []Column{
				{Slot: "id", Field: StringField(WithPrimaryKey())},
				{Slot: "name", Field: StringField()},
				{Slot: "alias", Field: StringField(WithName("name"))},
			})
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
		})

		Convey("列名为空", func() {
			_, err := Register("orm.TestRegister.Empty", []Column{{Field: StringField(WithPrimaryKey())}})
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
		})

		Convey("不合法的存储类型", func() {
			_, err := Register("orm.TestRegister.Invalid", []Column{
				{Slot: "id", Field: StringField(WithPrimaryKey())},
				{Slot: "data", Field: Field{Type: "BLOB"}},
			})
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
		})

		Convey("默认值函数不合法", func() {
			_, err := Register("orm.TestRegister.BadDefault", []Column{
				{Slot: "id", Field: IntegerField(WithPrimaryKey(), WithDefault(func(seed int64) int64 { return seed }))},
			})
			So(errors.Is(err, ErrSchema), ShouldBeTrue)
			_, ok := Lookup("orm.TestRegister.BadDefault")
			So(ok, ShouldBeFalse)
		})

		Convey("MustRegister 失败时 panic", func() {
			So(func() { MustRegister("", nil) }, ShouldPanic)
		})
	})
}
