package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hatlonely/orm/cfg"
	"github.com/hatlonely/orm/models"
	"github.com/hatlonely/orm/rdb"
)

type Options struct {
	Pool     rdb.PoolOptions     `cfg:"pool"`
	Executor rdb.ExecutorOptions `cfg:"executor"`
}

func main() {
	filename := "models/demo/demo.yaml"
	if len(os.Args) > 1 {
		filename = os.Args[1]
	}

	if err := run(context.Background(), filename); err != nil {
		fmt.Printf("运行失败: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, filename string) error {
	config, err := cfg.NewConfig(filename)
	if err != nil {
		return err
	}
	var options Options
	if err := config.ConvertTo(&options); err != nil {
		return err
	}

	pool, err := rdb.CreatePool(ctx, &options.Pool)
	if err != nil {
		return err
	}
	// 退出前先关闭连接池
	defer func() {
		if err := rdb.DestroyPool(ctx); err != nil {
			fmt.Printf("关闭连接池失败: %v\n", err)
		}
	}()

	executor, err := rdb.NewExecutorWithOptions(pool, &options.Executor)
	if err != nil {
		return err
	}
	store, err := models.NewStore(executor)
	if err != nil {
		return err
	}
	if err := store.CreateTables(ctx); err != nil {
		return err
	}

	fmt.Println("=== 保存 ===")
	user := &models.User{Name: "Test", Email: "test@example.com", Passwd: "123456780", Image: "about:blank"}
	if err := store.Users.Save(ctx, user); err != nil {
		return err
	}
	fmt.Printf("id: %s, createdAt: %f\n", user.ID, user.CreatedAt)

	fmt.Println("\n=== 查询 ===")
	users, page, err := store.ListUsers(ctx, 1, 10)
	if err != nil {
		return err
	}
	fmt.Printf("共 %d 个用户，当前页 %d 个\n", page.ItemCount, len(users))

	fmt.Println("\n=== 更新 ===")
	user.Admin = true
	if err := store.Users.Update(ctx, user); err != nil {
		return err
	}
	found, err := store.Users.Find(ctx, user.ID)
	if err != nil {
		return err
	}
	fmt.Printf("admin: %v\n", found.Admin)

	fmt.Println("\n=== 删除 ===")
	if err := store.Users.Remove(ctx, user); err != nil {
		return err
	}
	found, err = store.Users.Find(ctx, user.ID)
	if err != nil {
		return err
	}
	fmt.Printf("删除后查询: %v\n", found)
	return nil
}
