package core

import "context"

// ErrStoreNotFound 是存储层"未命中"的哨兵错误。
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "key not found")

// ErrStoreNotSupported 表示后端不支持某个扩展操作。
var ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "operation not supported")

// Store 是存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 使用场景：
//   - Feed 缓存：按用户 TTL 缓存已计算的推荐结果
//   - 交互事件日志：滚动窗口内的事件存储
//
// 实现：
//   - store.MemoryStore 实现此接口
//   - store.RedisStore 实现此接口
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值；过期条目视同不存在
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value；ttl 为秒，省略或 <=0 表示不过期。
	// 同 key 覆盖写入是原子的。
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// KeyValueStore 是 Store 的扩展接口，增加有序集合操作。
//
// 扩展功能：
//   - 有序集合（SortedSet）：用于按时间戳组织的事件日志、TopN 排序
//
// 如果后端不支持某些操作，可返回 ErrStoreNotSupported。
type KeyValueStore interface {
	Store

	// ZAdd 向有序集合添加成员
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZRange 按分数降序获取前 [start, stop] 的成员（用于 TopN）
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ZRangeByScore 获取分数在 [min, max] 区间内的成员（升序，用于时间窗口查询）
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)

	// ZRemRangeByScore 删除分数在 [min, max] 区间内的成员（用于滚动窗口清理）
	ZRemRangeByScore(ctx context.Context, key string, min, max float64) error
}
