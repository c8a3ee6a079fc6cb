package campaign

import (
	"fmt"
	"time"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
)

// Next calcula la próxima ocurrencia posterior a now partiendo de prev, en la timezone
// de la campaña (el horario de pared se mantiene a través de cambios de DST).
// Mensual conserva el día original y lo recorta al último día del mes cuando no existe.
func Next(rule repository.RecurringRule, prev time.Time, tz string, now time.Time) (time.Time, error) {
	if !rule.Recurring() {
		return time.Time{}, fmt.Errorf("rule %q is not recurring", rule)
	}
	loc, err := LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	base := prev.In(loc)

	for k := 1; ; k++ {
		var t time.Time
		switch rule {
		case repository.RecurDaily:
			t = base.AddDate(0, 0, k)
		case repository.RecurWeekly:
			t = base.AddDate(0, 0, 7*k)
		case repository.RecurMonthly:
			t = addMonthsClamped(base, k)
		}
		if t.After(now) {
			return t.UTC(), nil
		}
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
