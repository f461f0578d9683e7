// Package generator produces in-memory candidate rows for every seeded entity.
//
// Generators never touch the database: upstream identifiers come in as arguments and rows
// go out as slices ready for the storage gateway. The only exception is Messages, which reads
// chat rosters through the RosterReader port while composing messages.
package generator

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Column limits of the seeded schema.
const (
	MaxUsernameLen    = 255
	MaxEmailLen       = 255
	MaxPasswordLen    = 255
	MaxAddressLen     = 1000
	MaxDescriptionLen = 200
	MaxURLLen         = 255
	MaxCommentLen     = 1000
	MaxMessageLen     = 200
)

// Value ranges of generated rows.
const (
	MinYear       = 1980
	MaxMileage    = 300000
	MinPriceCents = 50000
	MaxPriceCents = 10000000

	// emailFragmentLen caps the username part of generated emails
	emailFragmentLen = 50
	passwordLen      = 12

	adPhotoRate      = 0.5
	messagePhotoRate = 0.3
)

// Generator holds the randomness source and the clock shared by all entity generators
type Generator struct {
	faker *gofakeit.Faker
	now   func() time.Time

	// issued counts generated emails
	issued int
}

// Option alters the default configuration of Generator
type Option interface {
	apply(*Generator)
}

type optionFunc func(g *Generator)

func (f optionFunc) apply(g *Generator) { f(g) }

// WithClock replaces time.Now as the source of "today"
func WithClock(now func() time.Time) Option {
	return optionFunc(func(g *Generator) {
		g.now = now
	})
}

// New returns Generator drawing every random value from faker
func New(faker *gofakeit.Faker, opts ...Option) *Generator {
	g := &Generator{
		faker: faker,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt.apply(g)
	}
	return g
}

// Quota is the number of rows of some kind a user asks for
type Quota struct {
	UserID int64
	Count  int
}

// Quotas assigns every user an independent count drawn uniformly from [0, max]
func (g *Generator) Quotas(userIDs []int64, max int) []Quota {
	quotas := make([]Quota, 0, len(userIDs))
	for _, id := range userIDs {
		count := 0
		if max > 0 {
			count = g.faker.Rand.Intn(max + 1)
		}
		quotas = append(quotas, Quota{UserID: id, Count: count})
	}
	return quotas
}

// Total sums counts of all quotas
func Total(quotas []Quota) int {
	total := 0
	for _, q := range quotas {
		total += q.Count
	}
	return total
}

// pick returns a uniformly chosen element of ids, ids must not be empty
func (g *Generator) pick(ids []int64) int64 {
	return ids[g.faker.Rand.Intn(len(ids))]
}

// chance reports true with probability p
func (g *Generator) chance(p float64) bool {
	return g.faker.Rand.Float64() < p
}

// truncate cuts s to at most n characters
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
