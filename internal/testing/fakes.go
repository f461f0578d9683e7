package testing

import (
	"context"
	"errors"
)

// ErrFake is returned by fakes configured to fail
var ErrFake = errors.New("fake failure")

// Allocator hands out sequential chat ids starting from Next, it fails once FailAfter ids were issued
// (zero FailAfter never fails)
type Allocator struct {
	Next      int64
	FailAfter int
	Issued    []int64
}

func (a *Allocator) CreateChat(_ context.Context) (int64, error) {
	if a.FailAfter > 0 && len(a.Issued) >= a.FailAfter {
		return 0, ErrFake
	}
	if a.Next == 0 {
		a.Next = 1
	}

	id := a.Next
	a.Next++
	a.Issued = append(a.Issued, id)

	return id, nil
}

// Roster serves chat memberships from a map, Err is returned for every read when set
type Roster struct {
	Members map[int64][]int64
	Err     error
	Reads   int
}

func (r *Roster) ChatRoster(_ context.Context, chat int64) ([]int64, error) {
	r.Reads++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Members[chat], nil
}
