package challenge

import "fmt"

// Summary condenses an attempt for status lines and sharing.
type Summary struct {
	Attempt       int
	CurrentDay    int
	CompletedDays int
	Streak        int
	TotalScore    int
	Failed        bool
	Finished      bool
}

// Summarize builds a Summary from the manager state and the attempt's days.
// Streak counts consecutive completed days ending at the current day, or at
// the day before when today is still open.
func Summarize(st State, days []DayRecord) Summary {
	s := Summary{
		Attempt:    st.Attempt,
		CurrentDay: st.CurrentDay,
		TotalScore: TotalScore(days),
		Failed:     st.HasFailed,
		Finished:   st.Finished,
	}
	byDay := make(map[int]Status, len(days))
	for _, d := range days {
		byDay[d.DayNumber] = d.Status
		if d.Status == StatusCompleted {
			s.CompletedDays++
		}
	}

	day := st.CurrentDay
	if byDay[day] != StatusCompleted {
		day--
	}
	for ; day >= 1 && byDay[day] == StatusCompleted; day-- {
		s.Streak++
	}
	return s
}

func (s Summary) String() string {
	switch {
	case s.Finished:
		return fmt.Sprintf("75 Hard: finished attempt %d with %d points!", s.Attempt, s.TotalScore)
	case s.Failed:
		return fmt.Sprintf("75 Hard: attempt %d ended on day %d/%d after %d completed days (%d points)",
			s.Attempt, s.CurrentDay, TotalDays, s.CompletedDays, s.TotalScore)
	default:
		return fmt.Sprintf("75 Hard: attempt %d, day %d/%d, %d days completed, streak %d, %d points",
			s.Attempt, s.CurrentDay, TotalDays, s.CompletedDays, s.Streak, s.TotalScore)
	}
}
