package storage

import (
	"context"
	"math/big"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

// PageSize is the number of rows sent to the database in a single statement
const PageSize = 100

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type page struct {
	from, to int
}

// pages splits n rows into consecutive pages of at most size rows
func pages(n, size int) []page {
	if n <= 0 || size <= 0 {
		return nil
	}

	out := make([]page, 0, (n+size-1)/size)
	for from := 0; from < n; from += size {
		to := from + size
		if to > n {
			to = n
		}
		out = append(out, page{from: from, to: to})
	}
	return out
}

// insertStatement builds multi-row insert of rows into table returning the generated key column
func insertStatement(table string, columns []string, returning string, rows [][]interface{}) (string, []interface{}, error) {
	b := psql.Insert(pgx.Identifier{table}.Sanitize()).Columns(columns...)
	for _, row := range rows {
		b = b.Values(row...)
	}
	if returning != "" {
		b = b.Suffix("RETURNING " + returning)
	}
	return b.ToSql()
}

// insertReturning inserts rows page by page and returns generated ids in insertion order
func (s *txSession) insertReturning(ctx context.Context, table string, columns []string, returning string, rows [][]interface{}) ([]int64, error) {
	ids := make([]int64, 0, len(rows))
	for _, p := range pages(len(rows), PageSize) {
		sql, args, err := insertStatement(table, columns, returning, rows[p.from:p.to])
		if err != nil {
			return nil, err
		}

		res, err := s.tx.Query(ctx, sql, args...)
		if err != nil {
			return nil, mapError(err)
		}
		for res.Next() {
			var id int64
			if err := res.Scan(&id); err != nil {
				res.Close()
				return nil, err
			}
			ids = append(ids, id)
		}
		res.Close()
		if err := res.Err(); err != nil {
			return nil, mapError(err)
		}
	}

	s.logger.Debugf("Inserted %d rows into %s", len(ids), table)

	return ids, nil
}

func (s *txSession) InsertMakes(ctx context.Context, makes []Make) ([]int64, error) {
	rows := make([][]interface{}, len(makes))
	for i, m := range makes {
		rows[i] = []interface{}{m.Name}
	}
	return s.insertReturning(ctx, "make", []string{"make_name"}, "make_id", rows)
}

func (s *txSession) InsertUsers(ctx context.Context, users []User) ([]int64, error) {
	rows := make([][]interface{}, len(users))
	for i, u := range users {
		rows[i] = []interface{}{u.Username, u.Email, u.Password}
	}
	return s.insertReturning(ctx, "User", []string{"username", "email", "password"}, "user_id", rows)
}

func (s *txSession) InsertUserAddresses(ctx context.Context, addresses []UserAddress) ([]int64, error) {
	rows := make([][]interface{}, len(addresses))
	for i, a := range addresses {
		rows[i] = []interface{}{a.UserID, a.Address}
	}
	return s.insertReturning(ctx, "useraddress", []string{"user_id", "address"}, "user_address_id", rows)
}

func (s *txSession) InsertAutos(ctx context.Context, autos []Auto) ([]int64, error) {
	rows := make([][]interface{}, len(autos))
	for i, a := range autos {
		rows[i] = []interface{}{a.MakeID, int32(a.Year), a.Color, int32(a.Mileage)}
	}
	return s.insertReturning(ctx, "auto", []string{"make_id", "year", "color", "mileage"}, "auto_id", rows)
}

func (s *txSession) InsertAds(ctx context.Context, ads []Ad) ([]int64, error) {
	rows := make([][]interface{}, len(ads))
	for i, a := range ads {
		rows[i] = []interface{}{a.UserID, a.AutoID, a.UserAddressID, date(a.PublicationDate)}
	}
	return s.insertReturning(ctx, "ad", []string{"user_id", "auto_id", "user_address_id", "publication_date"}, "ad_id", rows)
}

func (s *txSession) InsertAdInfos(ctx context.Context, infos []AdInfo) ([]int64, error) {
	rows := make([][]interface{}, len(infos))
	for i, info := range infos {
		rows[i] = []interface{}{info.AdID, info.Description, nullableText(info.PhotoURL), string(info.Status), cents(info.PriceCents)}
	}
	return s.insertReturning(ctx, "adinfo", []string{"ad_id", "description", "photo_url", "status", "price"}, "ad_info_id", rows)
}

func (s *txSession) InsertReviews(ctx context.Context, reviews []Review) ([]int64, error) {
	rows := make([][]interface{}, len(reviews))
	for i, r := range reviews {
		rows[i] = []interface{}{r.UserID, r.AdID, int32(r.Rating), r.Comment, date(r.Date)}
	}
	return s.insertReturning(ctx, "review", []string{"user_id", "ad_id", "rating", "comment", "date"}, "review_id", rows)
}

func (s *txSession) InsertMessages(ctx context.Context, messages []Message) ([]int64, error) {
	rows := make([][]interface{}, len(messages))
	for i, m := range messages {
		rows[i] = []interface{}{m.ChatID, m.UserID, m.Text, timestamp(m.Date), nullableText(m.Photo)}
	}
	return s.insertReturning(ctx, "message", []string{"chat_id", "user_id", "text", "date", "photo"}, "message_id", rows)
}

func date(t time.Time) pgtype.Date {
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Status: pgtype.Present}
}

func timestamp(t time.Time) pgtype.Timestamp {
	return pgtype.Timestamp{Time: t.UTC(), Status: pgtype.Present}
}

func nullableText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: *s, Status: pgtype.Present}
}

// cents encodes an amount of hundredths as numeric with two decimal places
func cents(v int64) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(v), Exp: -2, Status: pgtype.Present}
}
