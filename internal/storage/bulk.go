package storage

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// membershipStaging is a transaction scoped table membership edges are copied to
// before being merged into userchat
const membershipStaging = "userchat_staging"

type membershipBulk struct {
	rows []UserChat
	idx  int
}

func membershipRow(uc UserChat) []interface{} {
	return []interface{}{uc.UserID, uc.ChatID}
}

func copyFromBulk(rows []UserChat) pgx.CopyFromSource {
	return &membershipBulk{
		rows: rows,
		idx:  -1,
	}
}

func (mb *membershipBulk) Next() bool {
	mb.idx++
	return mb.idx < len(mb.rows)
}

func (mb *membershipBulk) Values() ([]interface{}, error) {
	return membershipRow(mb.rows[mb.idx]), nil
}

func (mb *membershipBulk) Err() error {
	return nil
}

// InsertUserChats copies edges into the staging table page by page and merges them into userchat,
// pairs already present in userchat or repeated in edges are dropped without error
func (s *txSession) InsertUserChats(ctx context.Context, edges []UserChat) (int64, error) {
	if len(edges) == 0 {
		return 0, nil
	}

	sql := "create temp table if not exists " + membershipStaging + " (user_id bigint not null, chat_id bigint not null) on commit drop"
	if _, err := s.tx.Exec(ctx, sql); err != nil {
		return 0, err
	}

	for _, p := range pages(len(edges), PageSize) {
		_, err := s.tx.CopyFrom(ctx, pgx.Identifier{membershipStaging}, []string{"user_id", "chat_id"}, copyFromBulk(edges[p.from:p.to]))
		if err != nil {
			return 0, mapError(err)
		}
	}

	sql = `insert into userchat (user_id, chat_id)
		   select distinct user_id, chat_id
		     from ` + membershipStaging + `
		       on conflict do nothing`
	tag, err := s.tx.Exec(ctx, sql)
	if err != nil {
		return 0, mapError(err)
	}

	if _, err := s.tx.Exec(ctx, "truncate "+membershipStaging); err != nil {
		return 0, err
	}

	s.logger.Debugf("Stored %d of %d membership edges", tag.RowsAffected(), len(edges))

	return tag.RowsAffected(), nil
}
