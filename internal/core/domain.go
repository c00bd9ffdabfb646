package core

import (
	"errors"
	"time"
)

type (
	// Date is a calendar date. The time component is always midnight UTC;
	// only year, month and day carry meaning.
	Date struct {
		time.Time
	}

	// Money is a monetary amount in centavos.
	Money struct {
		Cents int64
	}

	// Category is an expense category known to the ledger. ID stays empty
	// until the category has been resolved against the API; identity is by
	// normalized name, never by ID alone.
	Category struct {
		ID   string
		Name string
	}

	// Period is an inclusive date range.
	Period struct {
		From Date
		To   Date
	}

	// LineItem is a single payable returned by the ledger. Read-only from
	// this module's perspective.
	LineItem struct {
		CompetenceDate Date
		DueDate        Date
		Description    string
		Amount         Money
	}

	// Analysis is the translation of one question: a concrete period, the
	// matched category if any, and whatever free text remains after the
	// recognized phrases were stripped.
	Analysis struct {
		Period   Period
		Category *Category
		Residual string
	}
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrEmptyQuestion = errors.New("empty question")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// String renders the date as an ISO calendar date (YYYY-MM-DD).
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return ErrInvalidPeriod
	}
	if p.From.After(p.To.Time) {
		return ErrInvalidPeriod
	}
	return nil
}

// EffectiveDate is the accounting-relevant date of the item: the
// competência date when present, the due date otherwise.
func (li LineItem) EffectiveDate() Date {
	if !li.CompetenceDate.IsZero() {
		return li.CompetenceDate
	}
	return li.DueDate
}
