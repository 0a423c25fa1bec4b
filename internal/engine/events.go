package engine

import (
	"log/slog"
	"math"

	"github.com/SenderoElectoral/covid-19-simulator/internal/dataset"
)

// checkHistoricalEvents dispatches events due on the current date. The
// processed set is keyed by date, so at most one event fires per date
// even if the list holds several.
func (e *Engine) checkHistoricalEvents() {
	key := e.current.Format("2006-01-02")
	for i := range e.data.Events {
		ev := e.data.Events[i]
		if !sameDay(ev.Date, e.current) || e.processed[key] {
			continue
		}
		e.processed[key] = true

		slog.Info("historical event", "date", key, "type", ev.Type, "description", ev.Description)
		copied := ev
		e.notes.publish(Notification{Type: NoteHistoricalEvent, Event: &copied})
		e.applyEventEffects(ev)
	}
}

// applyEventEffects applies an event's one-off effect.
func (e *Engine) applyEventEffects(ev dataset.Event) {
	switch ev.Type {
	case dataset.EventLockdown:
		// Global transmission drop, permanent for the rest of the run.
		e.params.Infectivity *= 0.7

	case dataset.EventVaccine:
		// A tenth of each country's active cases resolves to recovered.
		for _, code := range e.sortedCountryCodes() {
			c := e.countries[code]
			if c.Active <= 0 {
				continue
			}
			vaccinated := int64(math.Floor(float64(c.Active) * 0.1))
			c.Recovered += vaccinated
			c.Active -= vaccinated
		}

	case dataset.EventVariant:
		// The variant schedule owns parameter changes.
	}
}
