package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/tachibanayu24/taskstreak/internal/store"
)

func ToCSV(tasks []store.CompletedTask, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Task ID", "Title", "Date", "Completed At"}); err != nil {
		return err
	}

	for _, t := range tasks {
		completedAt := time.UnixMilli(t.CompletedAt).Local().Format(time.RFC3339)
		row := []string{
			t.TaskID,
			t.Title,
			t.Date,
			completedAt,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
