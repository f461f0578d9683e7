package chatgraph

import (
	"context"
	"math/rand"
	"testing"

	"autoru-seeder/internal/generator"
	"autoru-seeder/internal/storage"
	mytesting "autoru-seeder/internal/testing"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func bootstrap(t *testing.T, alloc IdentityAllocator) (*Synthesizer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return New(zap.New(core).Sugar(), rand.New(rand.NewSource(7)), alloc), logs
}

func users(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func rosters(edges []storage.UserChat) map[int64]map[int64]struct{} {
	out := make(map[int64]map[int64]struct{})
	for _, e := range edges {
		if out[e.ChatID] == nil {
			out[e.ChatID] = make(map[int64]struct{})
		}
		out[e.ChatID][e.UserID] = struct{}{}
	}
	return out
}

func TestBuildEveryChatHasTwoMembers(t *testing.T) {
	alloc := &mytesting.Allocator{}
	s, _ := bootstrap(t, alloc)

	pool := users(200)
	quotas := make([]generator.Quota, 0, len(pool))
	for i, id := range pool {
		quotas = append(quotas, generator.Quota{UserID: id, Count: i % 6})
	}

	edges, err := s.Build(context.Background(), quotas, pool)
	require.NoError(t, err)
	require.NotEmpty(t, edges)

	byChat := rosters(edges)
	require.Len(t, byChat, len(alloc.Issued))
	for _, chat := range alloc.Issued {
		require.GreaterOrEqual(t, len(byChat[chat]), 2, "chat %d", chat)
		require.ElementsMatch(t, keys(byChat[chat]), s.Members(chat))
	}
	require.Equal(t, alloc.Issued, s.Chats())
}

func TestBuildEdgesAreUnique(t *testing.T) {
	s, _ := bootstrap(t, &mytesting.Allocator{})

	pool := users(5)
	quotas := []generator.Quota{{UserID: 1, Count: 10}, {UserID: 2, Count: 10}, {UserID: 3, Count: 10}}

	edges, err := s.Build(context.Background(), quotas, pool)
	require.NoError(t, err)

	seen := make(map[storage.UserChat]struct{}, len(edges))
	for _, e := range edges {
		_, dup := seen[e]
		require.False(t, dup, "duplicate edge %+v", e)
		seen[e] = struct{}{}
	}
}

func TestBuildSingleQuotaInSmallPool(t *testing.T) {
	alloc := &mytesting.Allocator{}
	s, _ := bootstrap(t, alloc)

	edges, err := s.Build(context.Background(), []generator.Quota{{UserID: 1, Count: 3}}, users(2))
	require.NoError(t, err)

	// the first chat always gets both users, later iterations may only open new chats or rejoin
	require.NotEmpty(t, alloc.Issued)
	first := alloc.Issued[0]
	require.ElementsMatch(t, []int64{1, 2}, s.Members(first))

	for chat, roster := range rosters(edges) {
		require.Len(t, roster, 2, "chat %d", chat)
	}
	require.Len(t, edges, 2*len(alloc.Issued))
}

func TestBuildSingleUserPool(t *testing.T) {
	alloc := &mytesting.Allocator{}
	s, logs := bootstrap(t, alloc)

	edges, err := s.Build(context.Background(), []generator.Quota{{UserID: 1, Count: 3}}, []int64{1, 1})
	require.NoError(t, err)
	require.Empty(t, edges)
	require.Empty(t, alloc.Issued)
	require.Equal(t, 1, logs.FilterMessage("not enough users to form chats").Len())
}

func TestBuildZeroQuotas(t *testing.T) {
	alloc := &mytesting.Allocator{}
	s, _ := bootstrap(t, alloc)

	edges, err := s.Build(context.Background(), []generator.Quota{{UserID: 1}, {UserID: 2}}, users(2))
	require.NoError(t, err)
	require.Empty(t, edges)
	require.Empty(t, alloc.Issued)
}

func TestBuildAllocationError(t *testing.T) {
	alloc := &mytesting.Allocator{FailAfter: 1}
	s := New(zap.NewNop().Sugar(), rand.New(rand.NewSource(1)), alloc)

	// with one chat the join draw succeeds at most 70% of the time, 50 draws open a second chat
	_, err := s.Build(context.Background(), []generator.Quota{{UserID: 1, Count: 50}}, users(10))
	require.ErrorIs(t, err, mytesting.ErrFake)
	require.Len(t, alloc.Issued, 1)
}

func TestRecruitFallsBackToScan(t *testing.T) {
	s, logs := bootstrap(t, &mytesting.Allocator{})
	s.members[1] = map[int64]struct{}{}

	s.join(1, 5)
	s.recruit(1, 5, []int64{5, 5, 5, 5, 6})
	require.ElementsMatch(t, []int64{5, 6}, s.Members(1))

	s.members[2] = map[int64]struct{}{}
	s.join(2, 5)
	s.recruit(2, 5, []int64{5})
	require.Equal(t, []int64{5}, s.Members(2))
	require.Equal(t, 1, logs.FilterMessage("no second member for chat").Len())
}

func keys(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
