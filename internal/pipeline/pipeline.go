// Package pipeline seeds the schema stage by stage in foreign key order.
//
// Every stage runs in its own transaction: a failing stage is rolled back while the stages
// committed before it stay in the database.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"

	"autoru-seeder/internal/chatgraph"
	"autoru-seeder/internal/generator"
	"autoru-seeder/internal/storage"
	"go.uber.org/zap"
)

// Stage names in execution order
const (
	StageMakes         = "makes"
	StageUsers         = "users"
	StageUserAddresses = "user addresses"
	StageAutos         = "autos"
	StageAds           = "ads"
	StageAdInfos       = "ad infos"
	StageReviews       = "reviews"
	StageChats         = "chats"
	StageMessages      = "messages"
)

// Store runs a unit of work in a transaction, implemented by storage.Store and memory.Store
type Store interface {
	InTx(ctx context.Context, stage string, fn func(context.Context, storage.Session) error) error
}

// Volumes defines how many rows are generated
type Volumes struct {
	Users             int `env:"USERS" envDefault:"5000"`
	AddressesPerUser  int `env:"ADDRESSES_PER_USER" envDefault:"2"`
	Autos             int `env:"AUTOS" envDefault:"7000"`
	MaxAdsPerUser     int `env:"MAX_ADS_PER_USER" envDefault:"10"`
	MaxReviewsPerUser int `env:"MAX_REVIEWS_PER_USER" envDefault:"10"`
	MaxChatsPerUser   int `env:"MAX_CHATS_PER_USER" envDefault:"5"`
	Messages          int `env:"MESSAGES" envDefault:"300"`
}

// StageResult is the number of rows a stage persisted
type StageResult struct {
	Name  string
	Count int
}

// Report summarizes a run
type Report struct {
	Stages []StageResult
	// ChatsDiscovered is the number of chats having members when messages were generated
	ChatsDiscovered int
}

// Count returns the row count of the named stage
func (r Report) Count(stage string) int {
	for _, s := range r.Stages {
		if s.Name == stage {
			return s.Count
		}
	}
	return 0
}

// Pipeline defines fields shared by all stages of a run
type Pipeline struct {
	logger  *zap.SugaredLogger
	store   Store
	gen     *generator.Generator
	rand    *rand.Rand
	volumes Volumes
}

// New returns Pipeline writing to store. gen produces rows, r drives the chat graph.
func New(logger *zap.SugaredLogger, store Store, gen *generator.Generator, r *rand.Rand, volumes Volumes) *Pipeline {
	return &Pipeline{
		logger:  logger,
		store:   store,
		gen:     gen,
		rand:    r,
		volumes: volumes,
	}
}

// run carries identifiers returned by the store from one stage to the next
type run struct {
	*Pipeline

	makeIDs    []int64
	userIDs    []int64
	addressIDs []int64
	autoIDs    []int64
	adIDs      []int64

	report Report
}

type stage struct {
	name string
	fn   func(ctx context.Context, s storage.Session) (int, error)
}

// Run executes all stages in order and stops at the first failure.
// The returned report lists the stages committed before the failure.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	r := &run{Pipeline: p}

	stages := []stage{
		{StageMakes, r.makes},
		{StageUsers, r.users},
		{StageUserAddresses, r.userAddresses},
		{StageAutos, r.autos},
		{StageAds, r.ads},
		{StageAdInfos, r.adInfos},
		{StageReviews, r.reviews},
		{StageChats, r.chats},
		{StageMessages, r.messages},
	}

	for _, st := range stages {
		p.logger.Infof("Seeding %s", st.name)

		var count int
		err := p.store.InTx(ctx, st.name, func(ctx context.Context, s storage.Session) error {
			n, err := st.fn(ctx, s)
			count = n
			return err
		})
		if err != nil {
			return r.report, fmt.Errorf("seed %s: %w", st.name, err)
		}

		r.report.Stages = append(r.report.Stages, StageResult{Name: st.name, Count: count})
		p.logger.Infof("Seeded %d rows of %s", count, st.name)
	}

	return r.report, nil
}

func (r *run) makes(ctx context.Context, s storage.Session) (int, error) {
	ids, err := s.InsertMakes(ctx, r.gen.Makes())
	if err != nil {
		return 0, err
	}
	r.makeIDs = ids
	return len(ids), nil
}

func (r *run) users(ctx context.Context, s storage.Session) (int, error) {
	ids, err := s.InsertUsers(ctx, r.gen.Users(r.volumes.Users))
	if err != nil {
		return 0, err
	}
	r.userIDs = ids
	return len(ids), nil
}

func (r *run) userAddresses(ctx context.Context, s storage.Session) (int, error) {
	ids, err := s.InsertUserAddresses(ctx, r.gen.UserAddresses(r.userIDs, r.volumes.AddressesPerUser))
	if err != nil {
		return 0, err
	}
	r.addressIDs = ids
	return len(ids), nil
}

func (r *run) autos(ctx context.Context, s storage.Session) (int, error) {
	ids, err := s.InsertAutos(ctx, r.gen.Autos(r.makeIDs, r.volumes.Autos))
	if err != nil {
		return 0, err
	}
	r.autoIDs = ids
	return len(ids), nil
}

func (r *run) ads(ctx context.Context, s storage.Session) (int, error) {
	years, err := s.AutoYears(ctx)
	if err != nil {
		return 0, err
	}

	quotas := r.gen.Quotas(r.userIDs, r.volumes.MaxAdsPerUser)
	ads := r.gen.Ads(quotas, r.autoIDs, r.addressIDs, years)
	if len(ads) == 0 && generator.Total(quotas) > 0 {
		r.logger.Warnw("no ads generated", "autos", len(r.autoIDs), "addresses", len(r.addressIDs))
	}

	ids, err := s.InsertAds(ctx, ads)
	if err != nil {
		return 0, err
	}
	r.adIDs = ids
	return len(ids), nil
}

func (r *run) adInfos(ctx context.Context, s storage.Session) (int, error) {
	ids, err := s.InsertAdInfos(ctx, r.gen.AdInfos(r.adIDs))
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (r *run) reviews(ctx context.Context, s storage.Session) (int, error) {
	quotas := r.gen.Quotas(r.userIDs, r.volumes.MaxReviewsPerUser)
	ids, err := s.InsertReviews(ctx, r.gen.Reviews(quotas, r.adIDs))
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// chats allocates chats through the session while building the graph,
// so chats and memberships are committed together
func (r *run) chats(ctx context.Context, s storage.Session) (int, error) {
	synth := chatgraph.New(r.logger, r.rand, s)

	quotas := r.gen.Quotas(r.userIDs, r.volumes.MaxChatsPerUser)
	edges, err := synth.Build(ctx, quotas, r.userIDs)
	if err != nil {
		return 0, err
	}

	inserted, err := s.InsertUserChats(ctx, edges)
	if err != nil {
		return 0, err
	}

	r.logger.Debugf("Created %d chats with %d memberships", len(synth.Chats()), inserted)

	return int(inserted), nil
}

func (r *run) messages(ctx context.Context, s storage.Session) (int, error) {
	chatIDs, err := s.ChatIDs(ctx)
	if err != nil {
		return 0, err
	}
	r.report.ChatsDiscovered = len(chatIDs)

	messages, err := r.gen.Messages(ctx, s, chatIDs, r.volumes.Messages)
	if err != nil {
		return 0, err
	}

	ids, err := s.InsertMessages(ctx, messages)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
