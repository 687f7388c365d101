package calendar

import "time"

// OccurrencesInRange returns every date of the arithmetic progression
// start + k*frequencyDays (k ≥ 0) that falls inside [from, to], inclusive.
//
// frequencyDays below 1 is floored to 1 rather than rejected, so callers
// never need to special-case bad stored definitions. All arithmetic is in
// whole days.
func OccurrencesInRange(start Date, frequencyDays int, from, to Date) []Date {
	if frequencyDays < 1 {
		frequencyDays = 1
	}
	if start.After(to) {
		return nil
	}

	// Smallest occurrence ≥ from on the progression: k = ceil((from-start)/freq).
	k := 0
	if gap := start.DaysUntil(from); gap > 0 {
		k = (gap + frequencyDays - 1) / frequencyDays
	}

	var dates []Date
	for d := start.Add(k * frequencyDays); !d.After(to); d = d.Add(frequencyDays) {
		dates = append(dates, d)
	}
	return dates
}

// OccurrencesInMonth is OccurrencesInRange over a full calendar month.
func OccurrencesInMonth(start Date, frequencyDays int, year int, month time.Month) []Date {
	return OccurrencesInRange(start, frequencyDays, MonthStart(year, month), MonthEnd(year, month))
}
