package engine

import "log/slog"

// checkVariantChange applies the variant schedule. A transition fires
// the first time the simulated date equals a schedule date whose variant
// differs from the active one.
//
// The multipliers compound: each transition scales the live parameters,
// so a later variant's effect stacks on top of all prior scaling. That
// accumulation is deliberate and observable, not an accident of the
// implementation.
func (e *Engine) checkVariantChange() {
	for _, entry := range e.data.Schedule {
		if !sameDay(entry.Date, e.current) || entry.VariantID == e.variantID {
			continue
		}
		variant, ok := e.data.Variants[entry.VariantID]
		if !ok {
			// Schedule entries are derived from the catalog, so this
			// cannot happen with a loaded dataset; guard anyway.
			continue
		}

		e.variantID = entry.VariantID
		e.params.Infectivity *= variant.Transmissibility
		e.params.Severity *= variant.Severity

		slog.Info("variant transition",
			"variant", variant.ID,
			"name", variant.Name,
			"infectivity", e.params.Infectivity,
			"severity", e.params.Severity,
		)

		v := variant
		e.notes.publish(Notification{
			Type:      NoteVariantChanged,
			VariantID: variant.ID,
			Variant:   &v,
		})
		break
	}
}
