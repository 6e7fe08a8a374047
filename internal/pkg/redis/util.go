package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// GetValue 获取字符串类型的值，不存在时返回空串
func GetValue(ctx context.Context, key string) (string, error) {
	value, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// TryLock 尝试加锁，retryTimes 为 -1 时一直重试
func TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error) {
	for i := 0; i <= retryTimes || retryTimes == -1; i++ {
		success, err := Rdb.SetNX(ctx, key, value, expiration).Result()
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
		if i < retryTimes || retryTimes == -1 {
			time.Sleep(time.Millisecond * 200)
		}
	}
	return false, nil
}

// UnLock 释放锁
func UnLock(ctx context.Context, key string, value interface{}) {
	Rdb.Eval(ctx, "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end", []string{key}, value)
}

// HSetWithExpiration 写入哈希并设置过期时间
func HSetWithExpiration(ctx context.Context, key string, values map[string]interface{}, expiration time.Duration) error {
	pipe := Rdb.TxPipeline()
	pipe.HSet(ctx, key, values)
	pipe.Expire(ctx, key, expiration)
	_, err := pipe.Exec(ctx)
	return err
}

// HGetAll 获取哈希全部字段，不存在时返回空 map
func HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return Rdb.HGetAll(ctx, key).Result()
}

// SAdd 向集合添加成员
func SAdd(ctx context.Context, key string, members ...interface{}) error {
	return Rdb.SAdd(ctx, key, members...).Err()
}

// GetSet 获取集合
func GetSet(ctx context.Context, key string) ([]string, error) {
	return Rdb.SMembers(ctx, key).Result()
}

func Rename(ctx context.Context, oldKey string, newKey string) error {
	return Rdb.Rename(ctx, oldKey, newKey).Err()
}

// DeleteKey 删除键
func DeleteKey(ctx context.Context, keys ...string) error {
	return Rdb.Del(ctx, keys...).Err()
}

// Publish 向频道发布消息
func Publish(ctx context.Context, channel string, message interface{}) error {
	return Rdb.Publish(ctx, channel, message).Err()
}

// Subscribe 订阅频道
func Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return Rdb.Subscribe(ctx, channels...)
}

// Enabled 客户端是否已初始化
func Enabled() bool {
	return Rdb != nil
}
