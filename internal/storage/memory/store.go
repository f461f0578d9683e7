// Package memory implements the storage session contract without a database.
//
// It mirrors the constraints of the seeded schema (unique emails, unique memberships, foreign keys)
// and the transactional behaviour of storage.Store, and is used for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"

	"autoru-seeder/internal/storage"
	"go.uber.org/zap"
)

type membership struct {
	userID, chatID int64
}

// tables holds committed rows, ids are positions in slices plus one
type tables struct {
	makes     []storage.Make
	users     []storage.User
	addresses []storage.UserAddress
	autos     []storage.Auto
	ads       []storage.Ad
	adInfos   []storage.AdInfo
	reviews   []storage.Review
	chats     int64
	userChats []storage.UserChat
	messages  []storage.Message

	emails  map[string]struct{}
	members map[membership]struct{}
}

func newTables() *tables {
	return &tables{
		emails:  make(map[string]struct{}),
		members: make(map[membership]struct{}),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		makes:     append([]storage.Make(nil), t.makes...),
		users:     append([]storage.User(nil), t.users...),
		addresses: append([]storage.UserAddress(nil), t.addresses...),
		autos:     append([]storage.Auto(nil), t.autos...),
		ads:       append([]storage.Ad(nil), t.ads...),
		adInfos:   append([]storage.AdInfo(nil), t.adInfos...),
		reviews:   append([]storage.Review(nil), t.reviews...),
		chats:     t.chats,
		userChats: append([]storage.UserChat(nil), t.userChats...),
		messages:  append([]storage.Message(nil), t.messages...),
		emails:    make(map[string]struct{}, len(t.emails)),
		members:   make(map[membership]struct{}, len(t.members)),
	}
	for k := range t.emails {
		c.emails[k] = struct{}{}
	}
	for k := range t.members {
		c.members[k] = struct{}{}
	}
	return c
}

// Store keeps every table in memory. Transactions work on a copy of committed tables
// which replaces them on commit.
type Store struct {
	logger *zap.SugaredLogger
	data   *tables
}

// NewStore returns an empty Store
func NewStore(logger *zap.SugaredLogger) *Store {
	return &Store{
		logger: logger,
		data:   newTables(),
	}
}

// InTx runs fn on a snapshot of the committed tables and publishes the snapshot when fn succeeds
func (s *Store) InTx(ctx context.Context, stage string, fn func(context.Context, storage.Session) error) error {
	session := &session{
		logger: s.logger.With("stage", stage),
		data:   s.data.clone(),
	}
	if err := fn(ctx, session); err != nil {
		s.logger.Debugf("Rolling back stage %s: %v", stage, err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.data = session.data
	return nil
}

// Counts returns the number of committed rows per table
func (s *Store) Counts() map[string]int {
	return map[string]int{
		"make":        len(s.data.makes),
		"User":        len(s.data.users),
		"useraddress": len(s.data.addresses),
		"auto":        len(s.data.autos),
		"ad":          len(s.data.ads),
		"adinfo":      len(s.data.adInfos),
		"review":      len(s.data.reviews),
		"chat":        int(s.data.chats),
		"userchat":    len(s.data.userChats),
		"message":     len(s.data.messages),
	}
}

// Ads returns committed listings, the id of a listing is its index plus one
func (s *Store) Ads() []storage.Ad {
	return append([]storage.Ad(nil), s.data.ads...)
}

// Autos returns committed vehicles, the id of a vehicle is its index plus one
func (s *Store) Autos() []storage.Auto {
	return append([]storage.Auto(nil), s.data.autos...)
}

// UserChats returns committed memberships in insertion order
func (s *Store) UserChats() []storage.UserChat {
	return append([]storage.UserChat(nil), s.data.userChats...)
}

// Messages returns committed messages
func (s *Store) Messages() []storage.Message {
	return append([]storage.Message(nil), s.data.messages...)
}

type session struct {
	logger *zap.SugaredLogger
	data   *tables
}

func exists(id int64, n int) bool {
	return id >= 1 && id <= int64(n)
}

func fkError(constraint string, id int64) error {
	return fmt.Errorf("%w: %s (%d)", storage.ErrForeignKeyViolation, constraint, id)
}

// appendIDs returns ids assigned to n rows appended after first existing rows
func appendIDs(first, n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(first + i + 1)
	}
	return ids
}

func (s *session) InsertMakes(ctx context.Context, makes []storage.Make) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := appendIDs(len(s.data.makes), len(makes))
	s.data.makes = append(s.data.makes, makes...)
	return ids, nil
}

func (s *session) InsertUsers(ctx context.Context, users []storage.User) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, u := range users {
		if _, ok := s.data.emails[u.Email]; ok {
			return nil, fmt.Errorf("%w: User_email_key", storage.ErrUniqueViolation)
		}
		s.data.emails[u.Email] = struct{}{}
	}

	ids := appendIDs(len(s.data.users), len(users))
	s.data.users = append(s.data.users, users...)
	return ids, nil
}

func (s *session) InsertUserAddresses(ctx context.Context, addresses []storage.UserAddress) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range addresses {
		if !exists(a.UserID, len(s.data.users)) {
			return nil, fkError("useraddress_user_id_fkey", a.UserID)
		}
	}

	ids := appendIDs(len(s.data.addresses), len(addresses))
	s.data.addresses = append(s.data.addresses, addresses...)
	return ids, nil
}

func (s *session) InsertAutos(ctx context.Context, autos []storage.Auto) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range autos {
		if !exists(a.MakeID, len(s.data.makes)) {
			return nil, fkError("auto_make_id_fkey", a.MakeID)
		}
	}

	ids := appendIDs(len(s.data.autos), len(autos))
	s.data.autos = append(s.data.autos, autos...)
	return ids, nil
}

func (s *session) InsertAds(ctx context.Context, ads []storage.Ad) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range ads {
		switch {
		case !exists(a.UserID, len(s.data.users)):
			return nil, fkError("ad_user_id_fkey", a.UserID)
		case !exists(a.AutoID, len(s.data.autos)):
			return nil, fkError("ad_auto_id_fkey", a.AutoID)
		case !exists(a.UserAddressID, len(s.data.addresses)):
			return nil, fkError("ad_user_address_id_fkey", a.UserAddressID)
		}
	}

	ids := appendIDs(len(s.data.ads), len(ads))
	s.data.ads = append(s.data.ads, ads...)
	return ids, nil
}

func (s *session) InsertAdInfos(ctx context.Context, infos []storage.AdInfo) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, info := range infos {
		if !exists(info.AdID, len(s.data.ads)) {
			return nil, fkError("adinfo_ad_id_fkey", info.AdID)
		}
	}

	ids := appendIDs(len(s.data.adInfos), len(infos))
	s.data.adInfos = append(s.data.adInfos, infos...)
	return ids, nil
}

func (s *session) InsertReviews(ctx context.Context, reviews []storage.Review) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, r := range reviews {
		switch {
		case !exists(r.UserID, len(s.data.users)):
			return nil, fkError("review_user_id_fkey", r.UserID)
		case !exists(r.AdID, len(s.data.ads)):
			return nil, fkError("review_ad_id_fkey", r.AdID)
		}
	}

	ids := appendIDs(len(s.data.reviews), len(reviews))
	s.data.reviews = append(s.data.reviews, reviews...)
	return ids, nil
}

func (s *session) InsertMessages(ctx context.Context, messages []storage.Message) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, m := range messages {
		switch {
		case !exists(m.ChatID, int(s.data.chats)):
			return nil, fkError("message_chat_id_fkey", m.ChatID)
		case !exists(m.UserID, len(s.data.users)):
			return nil, fkError("message_user_id_fkey", m.UserID)
		}
	}

	ids := appendIDs(len(s.data.messages), len(messages))
	s.data.messages = append(s.data.messages, messages...)
	return ids, nil
}

func (s *session) InsertUserChats(ctx context.Context, edges []storage.UserChat) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for _, e := range edges {
		switch {
		case !exists(e.UserID, len(s.data.users)):
			return 0, fkError("userchat_user_id_fkey", e.UserID)
		case !exists(e.ChatID, int(s.data.chats)):
			return 0, fkError("userchat_chat_id_fkey", e.ChatID)
		}
	}

	var inserted int64
	for _, e := range edges {
		key := membership{userID: e.UserID, chatID: e.ChatID}
		if _, ok := s.data.members[key]; ok {
			continue
		}
		s.data.members[key] = struct{}{}
		s.data.userChats = append(s.data.userChats, e)
		inserted++
	}

	s.logger.Debugf("Inserted %d of %d memberships", inserted, len(edges))

	return inserted, nil
}

func (s *session) CreateChat(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.data.chats++
	return s.data.chats, nil
}

func (s *session) AutoYears(ctx context.Context) (map[int64]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	years := make(map[int64]int, len(s.data.autos))
	for i, a := range s.data.autos {
		years[int64(i+1)] = a.Year
	}
	return years, nil
}

func (s *session) ChatIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{})
	var ids []int64
	for _, e := range s.data.userChats {
		if _, ok := seen[e.ChatID]; ok {
			continue
		}
		seen[e.ChatID] = struct{}{}
		ids = append(ids, e.ChatID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *session) ChatRoster(ctx context.Context, chat int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var roster []int64
	for _, e := range s.data.userChats {
		if e.ChatID == chat {
			roster = append(roster, e.UserID)
		}
	}
	return roster, nil
}
