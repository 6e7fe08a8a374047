package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrSubjectMissing 计数所在行不存在
var ErrSubjectMissing = errors.New("counter subject missing")

// CounterStore 计数的原子读写能力
// 所有增减都在数据库中原地计算，调用方传入事务句柄保证与反应行的变更一起提交
type CounterStore interface {
	Apply(ctx context.Context, db *gorm.DB, table string, id uint64, d Delta) error
	Read(ctx context.Context, db *gorm.DB, table string, id uint64) (Counters, error)
	Overwrite(ctx context.Context, db *gorm.DB, table string, id uint64, c Counters) error
}

type gormCounterStore struct{}

func NewGormCounterStore() CounterStore {
	return &gormCounterStore{}
}

// Apply 使用单条 UPDATE 完成增量，列值下限为 0
func (s *gormCounterStore) Apply(ctx context.Context, db *gorm.DB, table string, id uint64, d Delta) error {
	if d.IsZero() {
		return nil
	}

	updates := make(map[string]interface{}, len(d.Buckets)+2)
	for b, n := range d.Buckets {
		if !b.Valid() {
			return ErrUnknownBucket
		}
		if n != 0 {
			updates[b.Column()] = clamped(b.Column(), n)
		}
	}
	if d.Total != 0 {
		updates[ColumnTotal] = clamped(ColumnTotal, d.Total)
		updates[ColumnLikes] = clamped(ColumnLikes, d.Total)
	}

	// MySQL 默认只返回实际变化的行数，下限截断时可能为 0，因此不以 RowsAffected 判断行是否存在
	return db.WithContext(ctx).Table(table).Where("id = ?", id).UpdateColumns(updates).Error
}

func (s *gormCounterStore) Read(ctx context.Context, db *gorm.DB, table string, id uint64) (Counters, error) {
	var c Counters
	err := db.WithContext(ctx).Table(table).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, fmt.Errorf("%w: %s#%d", ErrSubjectMissing, table, id)
	}
	return c, err
}

func (s *gormCounterStore) Overwrite(ctx context.Context, db *gorm.DB, table string, id uint64, c Counters) error {
	updates := map[string]interface{}{
		ColumnTotal: c.TotalReactions,
		ColumnLikes: c.Likes,
	}
	for _, b := range Buckets {
		updates[b.Column()] = c.Get(b)
	}
	return db.WithContext(ctx).Table(table).Where("id = ?", id).UpdateColumns(updates).Error
}

func clamped(column string, n int64) interface{} {
	return gorm.Expr(fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", column, column), n, n)
}
