package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tachibanayu24/taskstreak/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Days       []jsonDay  `json:"days"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonDay struct {
	Date           string `json:"date"`
	CompletedCount int    `json:"completed_count"`
}

type jsonTask struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title,omitempty"`
	Date        string `json:"date"`
	CompletedAt string `json:"completed_at"`
}

func ToJSON(days []store.DailyCompletion, tasks []store.CompletedTask, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, d := range days {
		export.Days = append(export.Days, jsonDay{
			Date:           d.Date,
			CompletedCount: d.CompletedCount,
		})
	}

	for _, t := range tasks {
		export.Tasks = append(export.Tasks, jsonTask{
			TaskID:      t.TaskID,
			Title:       t.Title,
			Date:        t.Date,
			CompletedAt: time.UnixMilli(t.CompletedAt).Local().Format(time.RFC3339),
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
