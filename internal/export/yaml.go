package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/hard75/internal/challenge"
)

func ToYAML(days []challenge.DayRecord, tasks map[string]string, path string) error {
	data, err := yaml.Marshal(newDocument(days, tasks))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}

// Write dispatches on format: csv, json or yaml.
func Write(format string, days []challenge.DayRecord, tasks map[string]string, path string) error {
	switch format {
	case "csv":
		return ToCSV(days, tasks, path)
	case "json":
		return ToJSON(days, tasks, path)
	case "yaml", "yml":
		return ToYAML(days, tasks, path)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
