package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/hard75/internal/challenge"
)

type document struct {
	ExportedAt string `json:"exported_at" yaml:"exported_at"`
	Attempts   int    `json:"attempts" yaml:"attempts"`
	TotalScore int    `json:"total_score" yaml:"total_score"`
	Count      int    `json:"count" yaml:"count"`
	Days       []row  `json:"days" yaml:"days"`
}

type row struct {
	Attempt int      `json:"attempt" yaml:"attempt"`
	Day     int      `json:"day" yaml:"day"`
	Status  string   `json:"status" yaml:"status"`
	Score   int      `json:"score" yaml:"score"`
	Done    int      `json:"done" yaml:"done"`
	Total   int      `json:"total" yaml:"total"`
	Tasks   []string `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	Updated string   `json:"updated,omitempty" yaml:"updated,omitempty"`
	Selfie  string   `json:"selfie,omitempty" yaml:"selfie,omitempty"`
	Note    string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// newRow flattens a day. Task ids are shown by name when the catalog still
// knows them.
func newRow(d challenge.DayRecord, tasks map[string]string) row {
	r := row{
		Attempt: d.AttemptNumber,
		Day:     d.DayNumber,
		Status:  string(d.Status),
		Score:   d.Score,
		Done:    len(d.CompletedTaskIDs),
		Total:   d.TotalTasks,
		Selfie:  d.SelfiePath,
		Note:    d.SelfieNote,
	}
	for _, id := range d.CompletedTaskIDs {
		if name, ok := tasks[id]; ok {
			r.Tasks = append(r.Tasks, name)
		} else {
			r.Tasks = append(r.Tasks, id)
		}
	}
	if d.Timestamp != nil {
		r.Updated = d.Timestamp.Local().Format(time.RFC3339)
	}
	return r
}

func newDocument(days []challenge.DayRecord, tasks map[string]string) document {
	doc := document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(days),
		TotalScore: challenge.TotalScore(days),
		Days:       make([]row, 0, len(days)),
	}
	seen := map[int]bool{}
	for _, d := range days {
		seen[d.AttemptNumber] = true
		doc.Days = append(doc.Days, newRow(d, tasks))
	}
	doc.Attempts = len(seen)
	return doc
}

func ToJSON(days []challenge.DayRecord, tasks map[string]string, path string) error {
	data, err := json.MarshalIndent(newDocument(days, tasks), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
