package generator

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"autoru-seeder/internal/catalog"
	"autoru-seeder/internal/storage"
)

// RosterReader returns current members of a chat
type RosterReader interface {
	ChatRoster(ctx context.Context, chat int64) ([]int64, error)
}

// Makes maps the make catalog to rows
func (g *Generator) Makes() []storage.Make {
	makes := make([]storage.Make, 0, len(catalog.Makes))
	for _, name := range catalog.Makes {
		makes = append(makes, storage.Make{Name: name})
	}
	return makes
}

// Users generates n users with unique emails
func (g *Generator) Users(n int) []storage.User {
	users := make([]storage.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, storage.User{
			Username: truncate(g.faker.Username(), MaxUsernameLen),
			Email:    g.email(),
			Password: truncate(g.faker.Password(true, true, true, false, false, passwordLen), MaxPasswordLen),
		})
	}
	return users
}

// email glues a username fragment to a unique suffix and a domain.
// The suffix is a seeded token followed by the number of emails issued by g,
// only the fragment is truncated so the suffix always survives the length limit.
func (g *Generator) email() string {
	g.issued++
	token := strconv.FormatUint(g.faker.Rand.Uint64(), 36)
	suffix := "_" + token + "." + strconv.Itoa(g.issued) + "@" + g.faker.RandomString(catalog.EmailDomains)

	budget := MaxEmailLen - utf8.RuneCountInString(suffix)
	if budget > emailFragmentLen {
		budget = emailFragmentLen
	}
	fragment := truncate(strings.ToLower(g.faker.Username()), budget)

	return fragment + suffix
}

// UserAddresses generates perUser addresses for every user
func (g *Generator) UserAddresses(userIDs []int64, perUser int) []storage.UserAddress {
	if perUser < 0 {
		perUser = 0
	}

	addresses := make([]storage.UserAddress, 0, len(userIDs)*perUser)
	for _, id := range userIDs {
		for i := 0; i < perUser; i++ {
			address := strings.ReplaceAll(g.faker.Address().Address, "\n", ", ")
			addresses = append(addresses, storage.UserAddress{
				UserID:  id,
				Address: truncate(address, MaxAddressLen),
			})
		}
	}
	return addresses
}

// Autos generates n vehicles of random makes built between MinYear and the current year
func (g *Generator) Autos(makeIDs []int64, n int) []storage.Auto {
	if len(makeIDs) == 0 {
		return nil
	}

	currentYear := g.now().Year()
	autos := make([]storage.Auto, 0, n)
	for i := 0; i < n; i++ {
		autos = append(autos, storage.Auto{
			MakeID:  g.pick(makeIDs),
			Year:    MinYear + g.faker.Rand.Intn(currentYear-MinYear+1),
			Color:   g.faker.RandomString(catalog.Colors),
			Mileage: g.faker.Rand.Intn(MaxMileage + 1),
		})
	}
	return autos
}

// Ads generates listings for each quota. Vehicle and address are drawn from the global pools,
// the publication date never predates the vehicle model year found in years.
func (g *Generator) Ads(quotas []Quota, autoIDs, addressIDs []int64, years map[int64]int) []storage.Ad {
	if len(autoIDs) == 0 || len(addressIDs) == 0 {
		return nil
	}

	ads := make([]storage.Ad, 0, Total(quotas))
	for _, q := range quotas {
		for i := 0; i < q.Count; i++ {
			auto := g.pick(autoIDs)
			year, ok := years[auto]
			if !ok {
				year = MinYear
			}

			ads = append(ads, storage.Ad{
				UserID:          q.UserID,
				AutoID:          auto,
				UserAddressID:   g.pick(addressIDs),
				PublicationDate: g.PublicationDate(year),
			})
		}
	}
	return ads
}

// AdInfos generates the detail record of every listing
func (g *Generator) AdInfos(adIDs []int64) []storage.AdInfo {
	infos := make([]storage.AdInfo, 0, len(adIDs))
	for _, id := range adIDs {
		status := storage.AdOpen
		if g.faker.Rand.Intn(2) == 1 {
			status = storage.AdClose
		}

		infos = append(infos, storage.AdInfo{
			AdID:        id,
			Description: truncate(g.faker.Sentence(10+g.faker.Rand.Intn(20)), MaxDescriptionLen),
			PhotoURL:    g.photo(adPhotoRate),
			Status:      status,
			PriceCents:  MinPriceCents + g.faker.Rand.Int63n(MaxPriceCents-MinPriceCents+1),
		})
	}
	return infos
}

// Reviews generates reviews of random listings for each quota, nothing is generated without listings
func (g *Generator) Reviews(quotas []Quota, adIDs []int64) []storage.Review {
	if len(adIDs) == 0 {
		return nil
	}

	today := g.today()
	reviews := make([]storage.Review, 0, Total(quotas))
	for _, q := range quotas {
		for i := 0; i < q.Count; i++ {
			reviews = append(reviews, storage.Review{
				UserID:  q.UserID,
				AdID:    g.pick(adIDs),
				Rating:  1 + g.faker.Rand.Intn(5),
				Comment: truncate(g.faker.Sentence(12), MaxCommentLen),
				Date:    g.dateBetween(today.AddDate(-1, 0, 0), today),
			})
		}
	}
	return reviews
}

// Messages generates up to n messages in random chats. The author of every message is read from
// the chat roster at generation time, chats without members are skipped so fewer than n messages
// may be returned.
func (g *Generator) Messages(ctx context.Context, roster RosterReader, chatIDs []int64, n int) ([]storage.Message, error) {
	if len(chatIDs) == 0 {
		return nil, nil
	}

	now := g.now()
	messages := make([]storage.Message, 0, n)
	for i := 0; i < n; i++ {
		chat := g.pick(chatIDs)
		members, err := roster.ChatRoster(ctx, chat)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			continue
		}

		messages = append(messages, storage.Message{
			ChatID: chat,
			UserID: g.pick(members),
			Text:   truncate(g.faker.Sentence(5+g.faker.Rand.Intn(20)), MaxMessageLen),
			Date:   g.timeBetween(now.AddDate(-1, 0, 0), now),
			Photo:  g.photo(messagePhotoRate),
		})
	}
	return messages, nil
}

// photo returns an image url with probability p
func (g *Generator) photo(p float64) *string {
	if !g.chance(p) {
		return nil
	}
	url := truncate(g.faker.ImageURL(100*(1+g.faker.Rand.Intn(10)), 100*(1+g.faker.Rand.Intn(10))), MaxURLLen)
	return &url
}
