package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sadopc/hard75/internal/challenge"
)

func ToCSV(days []challenge.DayRecord, tasks map[string]string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Attempt", "Day", "Status", "Score", "Done", "Total", "Tasks", "Updated", "Selfie", "Note"}); err != nil {
		return err
	}

	for _, d := range days {
		r := newRow(d, tasks)
		row := []string{
			strconv.Itoa(r.Attempt),
			strconv.Itoa(r.Day),
			r.Status,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Done),
			strconv.Itoa(r.Total),
			strings.Join(r.Tasks, "; "),
			r.Updated,
			r.Selfie,
			r.Note,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
