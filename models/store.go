package models

import (
	"context"

	"github.com/hatlonely/orm/orm"
	"github.com/pkg/errors"
)

// Store 用户、日志、评论三张表的读写入口
type Store struct {
	executor orm.Executor
	Users    *orm.Repository[User]
	Blogs    *orm.Repository[Blog]
	Comments *orm.Repository[Comment]
}

func NewStore(executor orm.Executor, opts ...orm.ModelOption) (*Store, error) {
	users, err := orm.NewRepository[User](orm.NewModel(UserTable, executor, opts...))
	if err != nil {
		return nil, err
	}
	blogs, err := orm.NewRepository[Blog](orm.NewModel(BlogTable, executor, opts...))
	if err != nil {
		return nil, err
	}
	comments, err := orm.NewRepository[Comment](orm.NewModel(CommentTable, executor, opts...))
	if err != nil {
		return nil, err
	}
	return &Store{executor: executor, Users: users, Blogs: blogs, Comments: comments}, nil
}

// CreateTables 表已经存在时跳过
func (s *Store) CreateTables(ctx context.Context) error {
	for _, t := range []*orm.Table{UserTable, BlogTable, CommentTable} {
		if _, err := s.executor.Execute(ctx, t.CreateTableSQL(), nil, true); err != nil {
			return errors.WithMessagef(err, "create table %s failed", t.Name())
		}
	}
	return nil
}

// FindUserByEmail 用户不存在时返回 nil, nil
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	users, err := s.Users.FindAll(ctx, orm.Where("`email`=?", email), orm.Limit(1))
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return users[0], nil
}

// ListUsers 按创建时间倒序分页
func (s *Store) ListUsers(ctx context.Context, pageIndex int, pageSize int) ([]*User, *orm.Page, error) {
	return listPage(ctx, s.Users, pageIndex, pageSize)
}

// ListBlogs 按创建时间倒序分页
func (s *Store) ListBlogs(ctx context.Context, pageIndex int, pageSize int) ([]*Blog, *orm.Page, error) {
	return listPage(ctx, s.Blogs, pageIndex, pageSize)
}

// ListComments 某篇日志下的评论，按创建时间倒序
func (s *Store) ListComments(ctx context.Context, blogID string) ([]*Comment, error) {
	return s.Comments.FindAll(ctx, orm.Where("`blog_id`=?", blogID), orm.OrderBy("`created_at` desc"))
}

func listPage[T any](ctx context.Context, repo *orm.Repository[T], pageIndex int, pageSize int) ([]*T, *orm.Page, error) {
	count, err := repo.Model().Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	page := orm.NewPage(int(count), pageIndex, pageSize)
	if page.Limit == 0 {
		return []*T{}, page, nil
	}
	vs, err := repo.FindAll(ctx, orm.OrderBy("`created_at` desc"), orm.WithLimit(page))
	if err != nil {
		return nil, nil, err
	}
	return vs, page, nil
}
