package repository

import (
	"Inkwell/internal/model"
	"Inkwell/internal/pkg/ledger"
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ReactionPlan 根据当前反应决定变更后的反应，nil 表示无反应
type ReactionPlan func(current *ledger.Bucket) *ledger.Bucket

// ReactionOutcome 一次反应变更提交后的结果
type ReactionOutcome struct {
	Subject  SubjectOwner
	Previous *ledger.Bucket
	Current  *ledger.Bucket
}

type ReactionRepo interface {
	Mutate(ctx context.Context, subjectType string, subjectID, userID uint64, plan ReactionPlan) (*ReactionOutcome, error)
	GetCounters(ctx context.Context, subjectType string, subjectID uint64) (*ledger.Counters, error)
	GetUserReactions(ctx context.Context, userID uint64, subjectType string, subjectIDs []uint64) (map[uint64]ledger.Bucket, error)
	Recount(ctx context.Context, subjectType string, subjectID uint64) (before, after ledger.Counters, err error)
}

type ReactionRepoImpl struct {
	db       *gorm.DB
	counters ledger.CounterStore
}

func NewReactionRepo(db *gorm.DB, counters ledger.CounterStore) ReactionRepo {
	return &ReactionRepoImpl{db: db, counters: counters}
}

// Mutate 锁定主体行后读取并变更反应行，计数增量与反应行在同一事务中提交
func (s *ReactionRepoImpl) Mutate(ctx context.Context, subjectType string, subjectID, userID uint64, plan ReactionPlan) (*ReactionOutcome, error) {
	table, err := SubjectTable(subjectType)
	if err != nil {
		return nil, err
	}

	var outcome *ReactionOutcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := lockSubject(tx, subjectType, subjectID)
		if err != nil {
			return err
		}

		var row model.Reaction
		err = tx.Where("subject_type = ? AND subject_id = ? AND user_id = ?", subjectType, subjectID, userID).
			Take(&row).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var prev *ledger.Bucket
		if err == nil {
			b := ledger.Bucket(row.ReactionType)
			prev = &b
		}
		next := plan(prev)
		now := time.Now()

		switch {
		case prev == nil && next == nil:
		case prev == nil:
			err = tx.Create(&model.Reaction{
				SubjectType:  subjectType,
				SubjectID:    subjectID,
				UserID:       userID,
				ReactionType: string(*next),
				CreatedAt:    now,
				UpdatedAt:    now,
			}).Error
		case next == nil:
			err = tx.Delete(&model.Reaction{}, row.ID).Error
		case *prev != *next:
			err = tx.Model(&model.Reaction{}).Where("id = ?", row.ID).
				Updates(map[string]interface{}{"reaction_type": string(*next), "updated_at": now}).Error
		}
		if err != nil {
			return err
		}

		if err = s.counters.Apply(ctx, tx, table, subjectID, ledger.Transition(prev, next)); err != nil {
			return err
		}

		outcome = &ReactionOutcome{Subject: *owner, Previous: prev, Current: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// GetCounters 读取主体计数，主体不存在时返回 nil
func (s *ReactionRepoImpl) GetCounters(ctx context.Context, subjectType string, subjectID uint64) (*ledger.Counters, error) {
	table, err := SubjectTable(subjectType)
	if err != nil {
		return nil, err
	}
	c, err := s.counters.Read(ctx, s.db.Where("is_deleted = ?", false), table, subjectID)
	if err != nil {
		if errors.Is(err, ledger.ErrSubjectMissing) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetUserReactions 批量查询用户在一组主体上的反应
func (s *ReactionRepoImpl) GetUserReactions(ctx context.Context, userID uint64, subjectType string, subjectIDs []uint64) (map[uint64]ledger.Bucket, error) {
	if userID == 0 || len(subjectIDs) == 0 {
		return map[uint64]ledger.Bucket{}, nil
	}
	var rows []*model.Reaction
	err := s.db.WithContext(ctx).
		Select("subject_id", "reaction_type").
		Where("user_id = ? AND subject_type = ? AND subject_id IN ?", userID, subjectType, subjectIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return lo.Associate(rows, func(r *model.Reaction) (uint64, ledger.Bucket) {
		return r.SubjectID, ledger.Bucket(r.ReactionType)
	}), nil
}

type reactionTally struct {
	ReactionType string
	Total        int64
}

// Recount 以反应行为准重算计数，返回重算前后的值
func (s *ReactionRepoImpl) Recount(ctx context.Context, subjectType string, subjectID uint64) (before, after ledger.Counters, err error) {
	table, err := SubjectTable(subjectType)
	if err != nil {
		return before, after, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSubject(tx, subjectType, subjectID); err != nil {
			return err
		}

		var rows []reactionTally
		err := tx.Model(&model.Reaction{}).
			Select("reaction_type, COUNT(*) AS total").
			Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
			Group("reaction_type").
			Scan(&rows).Error
		if err != nil {
			return err
		}

		counts := make(map[ledger.Bucket]int64, len(rows))
		for _, r := range rows {
			counts[ledger.Bucket(r.ReactionType)] = r.Total
		}
		after = ledger.Tally(counts)

		if before, err = s.counters.Read(ctx, tx, table, subjectID); err != nil {
			return err
		}
		if before == after {
			return nil
		}
		return s.counters.Overwrite(ctx, tx, table, subjectID, after)
	})
	return before, after, err
}
