package analyzer

import (
	"strings"
	"time"

	"despesas/internal/core"
)

// Period phrases recognized inside a normalized question. Order matters:
// InterpretPeriod checks "mes passado" before the this-month and this-year
// variants, and residual stripping follows the same list.
var periodPhrases = []string{
	"este ano",
	"esse ano",
	"este mes",
	"esse mes",
	"mes passado",
}

// defaultWindowDays is the fallback lookback when no phrase matches.
const defaultWindowDays = 30

// InterpretPeriod maps a normalized question to an inclusive date range.
// Phrases are matched as substrings, first match wins:
//
//	"mes passado"            -> previous calendar month
//	"este mes" / "esse mes"  -> first day of current month .. today
//	"este ano" / "esse ano"  -> January 1 .. today
//	otherwise                -> today-30d .. today
//
// now is injected so callers control the clock.
func InterpretPeriod(normalized string, now time.Time) core.Period {
	today := core.DateOf(now)

	switch {
	case strings.Contains(normalized, "mes passado"):
		firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		lastOfPrevious := firstOfCurrent.AddDate(0, 0, -1)
		return core.Period{
			From: core.NewDate(lastOfPrevious.Year(), int(lastOfPrevious.Month()), 1),
			To:   core.DateOf(lastOfPrevious),
		}
	case strings.Contains(normalized, "este mes"), strings.Contains(normalized, "esse mes"):
		return core.Period{
			From: core.NewDate(now.Year(), int(now.Month()), 1),
			To:   today,
		}
	case strings.Contains(normalized, "este ano"), strings.Contains(normalized, "esse ano"):
		return core.Period{
			From: core.NewDate(now.Year(), 1, 1),
			To:   today,
		}
	default:
		return core.Period{
			From: core.DateOf(now.AddDate(0, 0, -defaultWindowDays)),
			To:   today,
		}
	}
}
