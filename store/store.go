// Package store 提供 core.Store 的实现：
//   - MemoryStore：进程内存储，单实例部署与测试使用
//   - RedisStore：基于 go-redis，多实例共享候选池缓存与黑名单
//
// 接口定义在 core 包：
//
//	var s core.Store = store.NewMemoryStore()
package store

import (
	"fmt"

	"github.com/rushteam/gamerec/core"
)

// Config 描述要创建的存储后端。
type Config struct {
	Driver    string // memory / redis
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// New 按 Driver 创建 Store，默认 memory。
func New(cfg Config) (core.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(RedisConfig{
			Addr:      cfg.Addr,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
