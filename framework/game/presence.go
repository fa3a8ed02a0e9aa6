package game

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tai16/common/cache"
	"tai16/common/log"
)

// Presence 在线连接查询：玩家可能多端同时在线
type Presence interface {
	SocketIDsByPlayerID(playerID string) []string
}

const presenceKeyPrefix = "presence:conns:"

// RedisPresence 基于 redis set 的在线表，前置一层短 TTL 本地缓存
// ristretto 是有损缓存，未命中时回源 redis，所以有损无妨
type RedisPresence struct {
	cli   redis.Cmdable
	cache *cache.GeneralCache
}

func NewRedisPresence(cli redis.Cmdable) *RedisPresence {
	local, err := cache.NewGeneralCache(32<<20, 2*time.Second)
	if err != nil {
		log.Fatal("创建在线表本地缓存失败: %v", err)
	}
	return &RedisPresence{
		cli:   cli,
		cache: local,
	}
}

// Register 连接建立时登记
func (p *RedisPresence) Register(ctx context.Context, playerID, connID string) error {
	key := presenceKeyPrefix + playerID
	if err := p.cli.SAdd(ctx, key, connID).Err(); err != nil {
		return fmt.Errorf("登记在线连接失败: %w", err)
	}
	p.cache.Delete(key)
	return nil
}

// Unregister 连接断开时注销
func (p *RedisPresence) Unregister(ctx context.Context, playerID, connID string) error {
	key := presenceKeyPrefix + playerID
	if err := p.cli.SRem(ctx, key, connID).Err(); err != nil {
		return fmt.Errorf("注销在线连接失败: %w", err)
	}
	p.cache.Delete(key)
	return nil
}

// SocketIDsByPlayerID 查某玩家当前的全部连接
func (p *RedisPresence) SocketIDsByPlayerID(playerID string) []string {
	key := presenceKeyPrefix + playerID
	if v, ok := p.cache.Get(key); ok {
		if ids, ok := v.([]string); ok {
			return ids
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ids, err := p.cli.SMembers(ctx, key).Result()
	if err != nil {
		log.Error("查询在线连接失败, player=%s: %v", playerID, err)
		return nil
	}
	p.cache.Set(key, ids)
	return ids
}

func (p *RedisPresence) Close() {
	p.cache.Close()
}
