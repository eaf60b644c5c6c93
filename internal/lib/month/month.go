// Package month содержит календарную арифметику периодов подписки.
package month

import (
	"time"
)

// AddMonths сдвигает дату на n календарных месяцев. Если в целевом месяце
// нет такого дня, берётся последний день месяца (31 января + 1 = 29 февраля).
func AddMonths(start time.Time, n int) time.Time {
	y, m, d := start.Date()
	first := time.Date(y, m+time.Month(n), 1, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// PeriodEnd возвращает окончание оплаченного периода. Если текущий период
// ещё не истёк, новый отсчитывается от его конца.
func PeriodEnd(now time.Time, current *time.Time, months int) time.Time {
	start := now
	if current != nil && current.After(now) {
		start = *current
	}
	return AddMonths(start, months)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
