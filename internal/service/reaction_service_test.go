package service

import (
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/ledger"
	"Inkwell/internal/pkg/redis"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextReaction(t *testing.T) {
	love, wow := ledger.Love, ledger.Wow
	assert.Equal(t, &love, nextReaction(nil, &love))
	assert.Nil(t, nextReaction(&love, &love))
	assert.Equal(t, &wow, nextReaction(&love, &wow))
	assert.Nil(t, nextReaction(&love, nil))
	assert.Nil(t, nextReaction(nil, nil))

	assert.Equal(t, ActionReact, actionOf(nil, &love))
	assert.Equal(t, ActionChange, actionOf(&love, &wow))
	assert.Equal(t, ActionUnreact, actionOf(&love, nil))
	assert.Equal(t, ActionNoop, actionOf(nil, nil))
}

func TestSetReactionReactChangeToggle(t *testing.T) {
	f := newFixture(t)
	svc := f.reactionService()
	author, reactor := f.user(t), f.user(t)
	postID := f.post(t, author)

	res, err := svc.SetReaction(f.ctx, consts.SubjectPost, postID, reactor, strPtr("love"))
	require.NoError(t, err)
	assert.Equal(t, ActionReact, res.Action)
	require.NotNil(t, res.ReactionType)
	assert.Equal(t, "love", *res.ReactionType)

	stats, err := svc.GetReactionStats(f.ctx, consts.SubjectPost, postID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Love)
	assert.Equal(t, int64(1), stats.Total)

	sent := f.notifier.ofType(NotifyReaction)
	require.Len(t, sent, 1)
	assert.Equal(t, author, sent[0].RecipientID)
	assert.Equal(t, reactor, sent[0].SenderID)
	assert.Equal(t, postID, sent[0].PostID)

	res, err = svc.SetReaction(f.ctx, consts.SubjectPost, postID, reactor, strPtr("wow"))
	require.NoError(t, err)
	assert.Equal(t, ActionChange, res.Action)

	stats, err = svc.GetReactionStats(f.ctx, consts.SubjectPost, postID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Love)
	assert.Equal(t, int64(1), stats.Wow)
	assert.Equal(t, int64(1), stats.Total)

	res, err = svc.SetReaction(f.ctx, consts.SubjectPost, postID, reactor, strPtr("wow"))
	require.NoError(t, err)
	assert.Equal(t, ActionUnreact, res.Action)
	assert.Nil(t, res.ReactionType)

	stats, err = svc.GetReactionStats(f.ctx, consts.SubjectPost, postID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Wow)
	assert.Equal(t, int64(0), stats.Total)

	// 切换与取消都不产生新通知
	assert.Equal(t, 1, f.notifier.count())

	p := f.loadPost(t, postID)
	assert.True(t, p.Reactions.Consistent())
}

func TestSetReactionRemoveWithoutReactionIsNoop(t *testing.T) {
	f := newFixture(t)
	svc := f.reactionService()
	postID := f.post(t, f.user(t))

	res, err := svc.SetReaction(f.ctx, consts.SubjectPost, postID, f.user(t), nil)
	require.NoError(t, err)
	assert.Equal(t, ActionNoop, res.Action)
	assert.Nil(t, res.ReactionType)
	assert.Equal(t, 0, f.notifier.count())
	assert.False(t, f.redis.Exists(consts.ReactionDirtyKey))
}

func TestSetReactionSelfReactionNotNotified(t *testing.T) {
	f := newFixture(t)
	svc := f.reactionService()
	author := f.user(t)
	postID := f.post(t, author)

	res, err := svc.SetReaction(f.ctx, consts.SubjectPost, postID, author, strPtr("like"))
	require.NoError(t, err)
	assert.Equal(t, ActionReact, res.Action)
	assert.Equal(t, 0, f.notifier.count())
}

func TestSetReactionRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := f.reactionService()
	postID := f.post(t, f.user(t))
	reactor := f.user(t)

	_, err := svc.SetReaction(f.ctx, consts.SubjectPost, postID, reactor, strPtr("meh"))
	assert.ErrorIs(t, err, ErrInvalidReactionType)

	_, err = svc.SetReaction(f.ctx, consts.SubjectPost, postID+100, reactor, strPtr("like"))
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	_, err = svc.SetReaction(f.ctx, "video", postID, reactor, strPtr("like"))
	assert.ErrorIs(t, err, ErrParamInvalid)

	p := f.loadPost(t, postID)
	assert.Equal(t, int64(0), p.Reactions.TotalReactions)
}

func TestSetReactionOnComment(t *testing.T) {
	f := newFixture(t)
	svc := f.reactionService()
	postAuthor, commenter, reactor := f.user(t), f.user(t), f.user(t)
	postID := f.post(t, postAuthor)
	commentID := f.comment(t, postID, commenter, 0)

	res, err := svc.SetReaction(f.ctx, consts.SubjectComment, commentID, reactor, strPtr("haha"))
	require.NoError(t, err)
	assert.Equal(t, ActionReact, res.Action)

	sent := f.notifier.ofType(NotifyReaction)
	require.Len(t, sent, 1)
	assert.Equal(t, commenter, sent[0].RecipientID)
	assert.Equal(t, postID, sent[0].PostID)
	assert.Equal(t, commentID, sent[0].TargetID)

	stats, err := svc.GetReactionStats(f.ctx, consts.SubjectComment, commentID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Haha)

	// 帖子计数不受影响
	p := f.loadPost(t, postID)
	assert.Equal(t, int64(0), p.Reactions.TotalReactions)
}

func TestSetReactionConcurrentUsersStayConsistent(t *testing.T) {
	f := newFixture(t)
	svc := f.reactionService()
	postID := f.post(t, f.user(t))

	const n = 12
	userIDs := make([]uint64, n)
	for i := range userIDs {
		userIDs[i] = f.user(t)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i, uid := range userIDs {
		wg.Add(1)
		go func(i int, uid uint64) {
			defer wg.Done()
			typ := string(ledger.Buckets[i%len(ledger.Buckets)])
			if _, err := svc.SetReaction(f.ctx, consts.SubjectPost, postID, uid, &typ); err != nil {
				errs <- err
			}
		}(i, uid)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p := f.loadPost(t, postID)
	assert.True(t, p.Reactions.Consistent())
	assert.Equal(t, int64(n), p.Reactions.TotalReactions)
	for _, b := range ledger.Buckets {
		assert.Equal(t, int64(n/len(ledger.Buckets)), p.Reactions.Get(b), b)
	}

	for _, uid := range userIDs[:n/2] {
		_, err := svc.SetReaction(f.ctx, consts.SubjectPost, postID, uid, nil)
		require.NoError(t, err)
	}
	p = f.loadPost(t, postID)
	assert.True(t, p.Reactions.Consistent())
	assert.Equal(t, int64(n/2), p.Reactions.TotalReactions)
}

func TestSetReactionMarksSubjectDirty(t *testing.T) {
	f := newFixture(t)
	svc := f.reactionService()
	postID := f.post(t, f.user(t))

	_, err := svc.GetReactionStats(f.ctx, consts.SubjectPost, postID)
	require.NoError(t, err)
	assert.True(t, f.redis.Exists(statsKey(consts.SubjectPost, postID)))

	_, err = svc.SetReaction(f.ctx, consts.SubjectPost, postID, f.user(t), strPtr("sad"))
	require.NoError(t, err)

	assert.False(t, f.redis.Exists(statsKey(consts.SubjectPost, postID)))
	members, err := redis.GetSet(f.ctx, consts.ReactionDirtyKey)
	require.NoError(t, err)
	assert.Contains(t, members, dirtyMember(consts.SubjectPost, postID))
}

func TestGetReactionStatsMissingSubject(t *testing.T) {
	f := newFixture(t)
	_, err := f.reactionService().GetReactionStats(f.ctx, consts.SubjectPost, 404)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestReconcileRepairsDrift(t *testing.T) {
	f := newFixture(t)
	svc := f.reactionService()
	postID := f.post(t, f.user(t))

	_, err := svc.SetReaction(f.ctx, consts.SubjectPost, postID, f.user(t), strPtr("like"))
	require.NoError(t, err)
	_, err = svc.SetReaction(f.ctx, consts.SubjectPost, postID, f.user(t), strPtr("angry"))
	require.NoError(t, err)

	require.NoError(t, f.db.Exec("UPDATE posts SET like_count = 7, total_reactions = 9 WHERE id = ?", postID).Error)

	drift, err := svc.Reconcile(f.ctx, consts.SubjectPost, postID)
	require.NoError(t, err)
	assert.True(t, drift)

	p := f.loadPost(t, postID)
	assert.Equal(t, int64(1), p.Reactions.Like)
	assert.Equal(t, int64(1), p.Reactions.Angry)
	assert.Equal(t, int64(2), p.Reactions.TotalReactions)
	assert.True(t, p.Reactions.Consistent())

	drift, err = svc.Reconcile(f.ctx, consts.SubjectPost, postID)
	require.NoError(t, err)
	assert.False(t, drift)
}

func TestStatsHashRoundTrip(t *testing.T) {
	stats := toStatsDTO(ledger.Counters{Like: 1, Wow: 2, TotalReactions: 3, Likes: 3})
	fields := make(map[string]string)
	for k, v := range statsToHash(stats) {
		fields[k] = fmt.Sprint(v)
	}
	got, ok := statsFromHash(fields)
	require.True(t, ok)
	assert.Equal(t, stats, got)

	_, ok = statsFromHash(map[string]string{"like": "1"})
	assert.False(t, ok)
}
