package domain

import "time"

// DueDateRule computes an absolute due date from a transaction anchor date.
// Days may be negative (before the anchor) or zero (on the anchor date). An
// empty Anchor selects the contract date.
type DueDateRule struct {
	Days   int
	Anchor AnchorKind
}

// DateOf truncates t to a calendar date at UTC midnight. All due-date
// arithmetic happens on these values so time-of-day and zone shifts never
// move a task across days.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ResolveDueDate computes the absolute due date for rule against txn.
//
// A nil rule means the task is open-ended: nil. A rule whose anchor is
// unknown on the transaction (date not yet entered) also yields nil; the
// task still exists, just without a due date. Malformed anchors behave like
// a nil rule.
func ResolveDueDate(rule *DueDateRule, txn Transaction) *time.Time {
	if rule == nil {
		return nil
	}
	switch rule.Anchor {
	case "", AnchorContract, AnchorClosing:
	default:
		return nil
	}
	anchor := txn.AnchorDate(rule.Anchor)
	if anchor == nil {
		return nil
	}
	due := DateOf(*anchor).AddDate(0, 0, rule.Days)
	return &due
}
