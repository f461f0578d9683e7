package storage

import "time"

// AdStatus is the adinfo.status enum.
type AdStatus string

const (
	AdOpen  AdStatus = "open"
	AdClose AdStatus = "close"
)

type Make struct {
	Name string
}

type User struct {
	Username string
	Email    string
	Password string
}

type UserAddress struct {
	UserID  int64
	Address string
}

type Auto struct {
	MakeID  int64
	Year    int
	Color   string
	Mileage int
}

type Ad struct {
	UserID          int64
	AutoID          int64
	UserAddressID   int64
	PublicationDate time.Time
}

// AdInfo is the 1:1 extension of Ad. PriceCents holds the price in hundredths,
// PhotoURL is nil when the listing has no photo.
type AdInfo struct {
	AdID        int64
	Description string
	PhotoURL    *string
	Status      AdStatus
	PriceCents  int64
}

type Review struct {
	UserID  int64
	AdID    int64
	Rating  int
	Comment string
	Date    time.Time
}

// UserChat is a membership edge between a user and a chat.
type UserChat struct {
	UserID int64
	ChatID int64
}

type Message struct {
	ChatID int64
	UserID int64
	Text   string
	Date   time.Time
	Photo  *string
}
