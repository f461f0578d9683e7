package generator

import "time"

const (
	secondsPerDay = 24 * 60 * 60
	lookbackDays  = 365
)

// PublicationWindow returns the range of valid publication dates for a listing of a vehicle built in year.
//
// The window opens on January 1 of the model year and closes today. A year that cannot form a date
// opens the window on January 1 of MinYear instead. When the vehicle year lies in the future the
// window covers the last 365 days.
func PublicationWindow(year int, today time.Time) (from, to time.Time) {
	to = midnight(today)

	if year < 1 || year > 9999 {
		from = time.Date(MinYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	if from.After(to) {
		from = to.AddDate(0, 0, -lookbackDays)
	}

	return from, to
}

// PublicationDate samples a date uniformly from PublicationWindow of year
func (g *Generator) PublicationDate(year int) time.Time {
	from, to := PublicationWindow(year, g.now())
	return g.dateBetween(from, to)
}

// today returns the current date at midnight UTC
func (g *Generator) today() time.Time {
	return midnight(g.now())
}

// dateBetween picks a day in [from, to], both ends inclusive
func (g *Generator) dateBetween(from, to time.Time) time.Time {
	days := (to.Unix() - from.Unix()) / secondsPerDay
	if days <= 0 {
		return from
	}
	return from.AddDate(0, 0, int(g.faker.Rand.Int63n(days+1)))
}

// timeBetween picks an instant in [from, to] with second precision
func (g *Generator) timeBetween(from, to time.Time) time.Time {
	seconds := to.Unix() - from.Unix()
	if seconds <= 0 {
		return from
	}
	return from.Add(time.Duration(g.faker.Rand.Int63n(seconds+1)) * time.Second)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
