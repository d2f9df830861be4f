package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// 默认锁过期时间
	defaultLockTTL = 10 * time.Second
)

// Lock 分布式锁（单节点实现）
type Lock struct {
	client *Client
	key    string        // 锁的键
	value  string        // 锁的值（用于验证锁持有者）
	ttl    time.Duration // 锁的过期时间
}

// NewLock 创建分布式锁
func NewLock(client *Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &Lock{
		client: client,
		key:    key,
		value:  uuid.New().String(), // UUID 作为锁持有者标识
		ttl:    ttl,
	}
}

// TryLock 尝试获取锁（非阻塞方式，立即返回）
func (l *Lock) TryLock(ctx context.Context) (bool, error) {
	// SET NX EX 原子操作获取锁
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to try lock: %w", err)
	}
	return ok, nil
}

// Lock 获取锁，失败立即返回 ErrLockFailed
func (l *Lock) Lock(ctx context.Context) error {
	ok, err := l.TryLock(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockFailed
	}
	return nil
}

// Unlock 释放锁（Lua 脚本保证只有锁持有者才能释放）
func (l *Lock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`

	result, err := l.client.Eval(ctx, script, []string{l.key}, l.value)
	if err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}

	// 0 表示锁不存在或不是当前持有者
	if n, ok := result.(int64); ok && n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
