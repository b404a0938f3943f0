package source

import (
	"strings"

	"github.com/dori/ectrack/internal/model"
)

// headerRows is the number of leading title/header rows in every source
const headerRows = 2

// ItemsFromRows maps parsed CSV rows to the default checklist.
// Column 1 is the task label and column 2 the tree; rows without a label are skipped.
func ItemsFromRows(rows [][]string) []model.Item {
	var items []model.Item
	for i := headerRows; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 3 || row[1] == "" {
			continue
		}
		items = append(items, model.Item{
			ID:   model.RowID(i),
			Task: strings.TrimSpace(row[1]),
			Tree: strings.TrimSpace(row[2]),
		})
	}
	return items
}
