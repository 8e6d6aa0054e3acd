package challenge

import "time"

// Input is everything the engine looks at. Next is the stored record for
// the day after Latest, nil once Latest is the final day.
type Input struct {
	Now         time.Time
	Latest      DayRecord
	Next        *DayRecord
	CatalogSize int
	GraceWindow time.Duration
}

// Evaluate decides how the challenge moves given the current instant and the
// most recently stamped day. It performs no I/O; the returned outcome lists
// the writes needed to apply it. Latest must carry a timestamp.
func Evaluate(in Input) Outcome {
	latest := in.Latest
	stamp := latest.Timestamp.In(in.Now.Location())
	gap := daysBetween(stamp, in.Now)

	if gap <= 0 {
		return unchanged(latest)
	}
	if gap == 1 && in.Now.Before(stamp.Add(in.GraceWindow)) {
		return unchanged(latest)
	}

	if latest.DayNumber >= TotalDays && latest.Status == StatusCompleted {
		return Outcome{Kind: OutcomeChallengeFinished, CurrentDay: latest.DayNumber}
	}

	if gap == 1 && latest.Status.HasHope() {
		return advance(in)
	}

	out := Outcome{Kind: OutcomeAttemptFailed, CurrentDay: latest.DayNumber}
	markFailed := latest.Status != StatusFailed
	if gap > 1 {
		// Only days that were still alive need the historical correction.
		markFailed = latest.Status.HasHope()
	}
	if markFailed {
		failed := latest
		failed.Status = StatusFailed
		failed.Score = 0
		out.Writes = []DayRecord{failed}
	}
	return out
}

func unchanged(latest DayRecord) Outcome {
	return Outcome{Kind: OutcomeUnchanged, CurrentDay: latest.DayNumber}
}

func advance(in Input) Outcome {
	nextDay := in.Latest.DayNumber + 1
	if nextDay > TotalDays {
		return Outcome{Kind: OutcomeChallengeFinished, CurrentDay: in.Latest.DayNumber}
	}

	now := in.Now
	var next DayRecord
	if in.Next == nil || in.Next.Status == StatusLocked {
		next = DayRecord{
			AttemptNumber: in.Latest.AttemptNumber,
			DayNumber:     nextDay,
			Status:        StatusFailed,
			TotalTasks:    in.CatalogSize,
		}
	} else {
		next = *in.Next
	}
	next.Timestamp = &now

	return Outcome{Kind: OutcomeAdvance, CurrentDay: nextDay, Writes: []DayRecord{next}}
}

// daysBetween counts calendar days from a to b using the calendar of b's
// location, so DST shifts do not skew the count.
func daysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// CalendarDate truncates t to midnight in its own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
