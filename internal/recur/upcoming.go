package recur

import (
	"sort"
	"time"

	"github.com/hucha-app/hucha/internal/model"
)

// DefaultHorizonDays is how far ahead the upcoming view looks when the
// caller does not say otherwise.
const DefaultHorizonDays = 30

// Agenda groups projected transactions by urgency for the upcoming view.
type Agenda struct {
	// Urgent is due today or tomorrow.
	Urgent []model.Transaction
	// Later is everything else inside the horizon.
	Later []model.Transaction
}

// Upcoming projects the next horizon days starting at now and splits the
// result into urgent (today/tomorrow) and later buckets, each ordered by
// date. Settled transactions are excluded; they are history, not agenda.
func Upcoming(transactions []model.Transaction, now time.Time, horizon int) Agenda {
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}

	today := startOfDay(now)
	end := today.AddDate(0, 0, horizon-1)

	var agenda Agenda
	for _, t := range ProjectRange(transactions, today, end) {
		if t.Status == model.StatusPaid {
			continue
		}
		if sameDay(t.Date, today) || sameDay(t.Date, today.AddDate(0, 0, 1)) {
			agenda.Urgent = append(agenda.Urgent, t)
		} else {
			agenda.Later = append(agenda.Later, t)
		}
	}

	byDate := func(list []model.Transaction) func(i, j int) bool {
		return func(i, j int) bool { return list[i].Date.Before(list[j].Date) }
	}
	sort.SliceStable(agenda.Urgent, byDate(agenda.Urgent))
	sort.SliceStable(agenda.Later, byDate(agenda.Later))

	return agenda
}

// DueSoon returns the unpaid transactions due today or tomorrow, the set
// the reminder surface notifies about.
func DueSoon(transactions []model.Transaction, now time.Time) []model.Transaction {
	return Upcoming(transactions, now, 2).Urgent
}
