package models

import (
	"github.com/hatlonely/orm/orm"
	"github.com/hatlonely/orm/uid"
)

var nextID = orm.GeneratedString(uid.NewStrGenerator())

func idField() orm.Field {
	return orm.StringField(orm.WithPrimaryKey(), orm.WithDDL("varchar(50)"), orm.WithDefaultFunc(nextID))
}

func createdAtField() orm.Field {
	return orm.FloatField(orm.WithDefaultFunc(orm.Now()))
}

var UserTable = orm.MustRegister("models.User", []orm.Column{
	{Slot: "id", Field: idField()},
	{Slot: "email", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "passwd", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "admin", Field: orm.BooleanField()},
	{Slot: "name", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "image", Field: orm.StringField(orm.WithDDL("varchar(500)"))},
	{Slot: "created_at", Field: createdAtField()},
}, orm.WithTableName("users"))

var BlogTable = orm.MustRegister("models.Blog", []orm.Column{
	{Slot: "id", Field: idField()},
	{Slot: "user_id", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "user_name", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "user_image", Field: orm.StringField(orm.WithDDL("varchar(500)"))},
	{Slot: "name", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "summary", Field: orm.StringField(orm.WithDDL("varchar(200)"))},
	{Slot: "content", Field: orm.TextField()},
	{Slot: "created_at", Field: createdAtField()},
}, orm.WithTableName("blogs"))

var CommentTable = orm.MustRegister("models.Comment", []orm.Column{
	{Slot: "id", Field: idField()},
	{Slot: "blog_id", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "user_id", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "user_name", Field: orm.StringField(orm.WithDDL("varchar(50)"))},
	{Slot: "user_image", Field: orm.StringField(orm.WithDDL("varchar(500)"))},
	{Slot: "content", Field: orm.TextField()},
	{Slot: "created_at", Field: createdAtField()},
}, orm.WithTableName("comments"))

type User struct {
	ID        string  `orm:"id,omitempty" json:"id"`
	Email     string  `orm:"email" json:"email"`
	Passwd    string  `orm:"passwd" json:"-"`
	Admin     bool    `orm:"admin" json:"admin"`
	Name      string  `orm:"name" json:"name"`
	Image     string  `orm:"image" json:"image"`
	CreatedAt float64 `orm:"created_at,omitempty" json:"createdAt"`
}

type Blog struct {
	ID        string  `orm:"id,omitempty" json:"id"`
	UserID    string  `orm:"user_id" json:"userId"`
	UserName  string  `orm:"user_name" json:"userName"`
	UserImage string  `orm:"user_image" json:"userImage"`
	Name      string  `orm:"name" json:"name"`
	Summary   string  `orm:"summary" json:"summary"`
	Content   string  `orm:"content" json:"content"`
	CreatedAt float64 `orm:"created_at,omitempty" json:"createdAt"`
}

type Comment struct {
	ID        string  `orm:"id,omitempty" json:"id"`
	BlogID    string  `orm:"blog_id" json:"blogId"`
	UserID    string  `orm:"user_id" json:"userId"`
	UserName  string  `orm:"user_name" json:"userName"`
	UserImage string  `orm:"user_image" json:"userImage"`
	Content   string  `orm:"content" json:"content"`
	CreatedAt float64 `orm:"created_at,omitempty" json:"createdAt"`
}
