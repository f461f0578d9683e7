// Package chatgraph builds the many-to-many graph of users and chats.
//
// Users either join an existing chat or open a new one, and every chat that gets a first member
// immediately gets a second one, so no persisted chat is left with a single participant.
package chatgraph

import (
	"context"
	"math/rand"

	"autoru-seeder/internal/generator"
	"autoru-seeder/internal/storage"
	"go.uber.org/zap"
)

// JoinProbability is the chance a user joins an existing chat instead of opening a new one
const JoinProbability = 0.7

// IdentityAllocator creates a chat and returns its identifier
type IdentityAllocator interface {
	CreateChat(ctx context.Context) (int64, error)
}

// Synthesizer keeps the membership map of a single Build
type Synthesizer struct {
	logger *zap.SugaredLogger
	rand   *rand.Rand
	alloc  IdentityAllocator

	chats   []int64
	members map[int64]map[int64]struct{}
	edges   []storage.UserChat
}

// New returns Synthesizer allocating chats through alloc
func New(logger *zap.SugaredLogger, r *rand.Rand, alloc IdentityAllocator) *Synthesizer {
	return &Synthesizer{
		logger:  logger,
		rand:    r,
		alloc:   alloc,
		members: make(map[int64]map[int64]struct{}),
	}
}

// Build distributes users over chats according to their quotas and returns the membership edges
// in insertion order. Chats are allocated eagerly, an allocation error aborts the build.
func (s *Synthesizer) Build(ctx context.Context, quotas []generator.Quota, userIDs []int64) ([]storage.UserChat, error) {
	if distinct(userIDs) < 2 {
		s.logger.Warnw("not enough users to form chats", "users", len(userIDs))
		return nil, nil
	}

	for _, q := range quotas {
		for i := 0; i < q.Count; i++ {
			chat, opened, err := s.chooseChat(ctx)
			if err != nil {
				return nil, err
			}

			s.join(chat, q.UserID)
			if opened {
				s.recruit(chat, q.UserID, userIDs)
			}
		}
	}

	s.logger.Debugw("chat graph built", "chats", len(s.chats), "memberships", len(s.edges))

	return s.edges, nil
}

// Members returns the roster of chat as built so far
func (s *Synthesizer) Members(chat int64) []int64 {
	roster := make([]int64, 0, len(s.members[chat]))
	for _, e := range s.edges {
		if e.ChatID == chat {
			roster = append(roster, e.UserID)
		}
	}
	return roster
}

// Chats returns identifiers of allocated chats in creation order
func (s *Synthesizer) Chats() []int64 {
	return s.chats
}

func (s *Synthesizer) chooseChat(ctx context.Context) (chat int64, opened bool, err error) {
	if len(s.chats) > 0 && s.rand.Float64() < JoinProbability {
		return s.chats[s.rand.Intn(len(s.chats))], false, nil
	}

	chat, err = s.alloc.CreateChat(ctx)
	if err != nil {
		return 0, false, err
	}
	s.chats = append(s.chats, chat)
	s.members[chat] = make(map[int64]struct{})

	return chat, true, nil
}

// join adds user to chat unless already a member
func (s *Synthesizer) join(chat, user int64) bool {
	roster := s.members[chat]
	if _, ok := roster[user]; ok {
		return false
	}
	roster[user] = struct{}{}
	s.edges = append(s.edges, storage.UserChat{UserID: user, ChatID: chat})
	return true
}

// recruit adds a second member distinct from first. Random draws are bounded by the pool size,
// then the pool is scanned in order.
func (s *Synthesizer) recruit(chat, first int64, pool []int64) {
	for attempt := 0; attempt < len(pool); attempt++ {
		candidate := pool[s.rand.Intn(len(pool))]
		if candidate != first {
			s.join(chat, candidate)
			return
		}
	}

	for _, candidate := range pool {
		if candidate != first {
			s.join(chat, candidate)
			return
		}
	}

	s.logger.Warnw("no second member for chat", "chat_id", chat, "user_id", first)
}

func distinct(ids []int64) int {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
		if len(seen) >= 2 {
			break
		}
	}
	return len(seen)
}
