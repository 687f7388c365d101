package recurring

import (
	"time"

	"github.com/jortega/bolsillo/internal/calendar"
	"github.com/jortega/bolsillo/internal/models"
)

// Expand projects a set of recurring expense definitions onto one calendar
// month. Inactive definitions and definitions whose start date lies beyond
// the month are skipped; definitions with an unparseable start date are
// skipped too, since stored rows predate validation tightening. Output order
// follows the input definitions; callers sort when they need a total order.
func Expand(definitions []*models.RecurringExpense, year int, month time.Month) []models.Occurrence {
	var occurrences []models.Occurrence
	for _, def := range definitions {
		if !def.Active {
			continue
		}
		start, err := calendar.ParseDate(def.StartDate)
		if err != nil {
			continue
		}
		for _, date := range calendar.OccurrencesInMonth(start, def.FrequencyDays, year, month) {
			occurrences = append(occurrences, def.OccurrenceOn(date))
		}
	}
	return occurrences
}
