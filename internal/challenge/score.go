package challenge

// StatusFor derives a day's status from how many of its tasks are done.
func StatusFor(completed, total int) Status {
	switch {
	case completed == 0:
		return StatusFailed
	case completed >= total:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// ScoreFor returns the points of a day: the fixed bonus when completed, one
// point per non-selfie task while in progress, zero otherwise.
func ScoreFor(status Status, completedIDs []string) int {
	switch status {
	case StatusCompleted:
		return CompletedBonus
	case StatusInProgress:
		n := 0
		for _, id := range completedIDs {
			if id != SelfieTaskID {
				n++
			}
		}
		return n
	default:
		return 0
	}
}

// TotalScore sums the scores of the given days.
func TotalScore(days []DayRecord) int {
	total := 0
	for _, d := range days {
		total += d.Score
	}
	return total
}

// normalizeTaskIDs drops duplicates and ids that are not in the catalog,
// keeping catalog order.
func normalizeTaskIDs(ids []string, catalog []Task) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, t := range catalog {
		if want[t.ID] {
			out = append(out, t.ID)
		}
	}
	return out
}

// WithSelfie returns the catalog with the selfie task prepended when it is
// not already present.
func WithSelfie(tasks []Task) []Task {
	for _, t := range tasks {
		if t.ID == SelfieTaskID {
			return tasks
		}
	}
	out := make([]Task, 0, len(tasks)+1)
	out = append(out, Task{ID: SelfieTaskID, Name: "Attach today's selfie"})
	return append(out, tasks...)
}
