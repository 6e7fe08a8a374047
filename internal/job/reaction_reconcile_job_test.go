package job

import (
	"Inkwell/internal/api/config"
	"Inkwell/internal/api/dto"
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/ledger"
	"Inkwell/internal/pkg/redis"
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReactionService struct {
	mu       sync.Mutex
	seen     []string
	failing  map[string]bool
	drifting map[string]bool
}

func (f *fakeReactionService) SetReaction(context.Context, string, uint64, uint64, *string) (*dto.ReactionResultDTO, error) {
	return nil, nil
}

func (f *fakeReactionService) GetReactionStats(context.Context, string, uint64) (*dto.ReactionStatsDTO, error) {
	return nil, nil
}

func (f *fakeReactionService) GetUserReactions(context.Context, uint64, string, []uint64) (map[uint64]ledger.Bucket, error) {
	return nil, nil
}

func (f *fakeReactionService) Reconcile(_ context.Context, subjectType string, subjectID uint64) (bool, error) {
	member := subjectType + ":" + itoa(subjectID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, member)
	if f.failing[member] {
		return false, errors.New("db down")
	}
	return f.drifting[member], nil
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	require.NoError(t, redis.InitRedis(config.RedisConfig{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = redis.Rdb.Close()
		redis.Rdb = nil
	})
	return mr
}

func TestParseDirtyMember(t *testing.T) {
	typ, id, ok := parseDirtyMember("post:12")
	assert.True(t, ok)
	assert.Equal(t, consts.SubjectPost, typ)
	assert.Equal(t, uint64(12), id)

	typ, id, ok = parseDirtyMember("comment:7")
	assert.True(t, ok)
	assert.Equal(t, consts.SubjectComment, typ)
	assert.Equal(t, uint64(7), id)

	for _, bad := range []string{"post", "video:1", "post:x", "post:-1", ""} {
		_, _, ok = parseDirtyMember(bad)
		assert.False(t, ok, bad)
	}
}

func TestReactionReconcileJobDrainsDirtySet(t *testing.T) {
	mr := setupRedis(t)
	_, err := mr.SAdd(consts.ReactionDirtyKey, "post:1", "comment:2", "garbage", "post:3")
	require.NoError(t, err)

	svc := &fakeReactionService{
		failing:  map[string]bool{"post:3": true},
		drifting: map[string]bool{"comment:2": true},
	}
	NewReactionReconcileJob(svc).Run()

	sort.Strings(svc.seen)
	assert.Equal(t, []string{"comment:2", "post:1", "post:3"}, svc.seen)

	// 失败的主体留待下一轮
	members, err := mr.Members(consts.ReactionDirtyKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"post:3"}, members)
	assert.False(t, mr.Exists(consts.ReactionDirtyKey+":processing"))
}

func TestReactionReconcileJobNothingToDo(t *testing.T) {
	setupRedis(t)
	svc := &fakeReactionService{}
	NewReactionReconcileJob(svc).Run()
	assert.Empty(t, svc.seen)
}

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }
