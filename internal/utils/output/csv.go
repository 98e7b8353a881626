package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/law-makers/scrapedeck/pkg/models"
)

// FormatCSV renders the result's data as one block per pattern group:
//
//	"<pattern> (<type>)"
//	"key1","key2",...
//	"v1","v2",...
//	<blank line>
//
// Headers are the union of item keys in first-seen order. Every cell is quoted,
// embedded quotes are doubled, and null or absent values become empty cells.
func FormatCSV(result models.ScrapeResult) ([]byte, error) {
	var sb strings.Builder

	for _, group := range result.Data {
		sb.WriteString(quote(fmt.Sprintf("%s (%s)", group.Pattern, group.Type)))
		sb.WriteByte('\n')

		var keys []string
		seen := map[string]bool{}
		rows := make([]map[string]any, 0, len(group.Items))
		for _, item := range group.Items {
			row := map[string]any{}
			for _, f := range item.Fields() {
				if !seen[f.Key] {
					seen[f.Key] = true
					keys = append(keys, f.Key)
				}
				row[f.Key] = f.Value
			}
			rows = append(rows, row)
		}

		header := make([]string, len(keys))
		for i, k := range keys {
			header[i] = quote(k)
		}
		sb.WriteString(strings.Join(header, ","))
		sb.WriteByte('\n')

		for _, row := range rows {
			cells := make([]string, len(keys))
			for i, k := range keys {
				cell, err := cellValue(row[k])
				if err != nil {
					return nil, fmt.Errorf("group %q key %q: %w", group.Pattern, k, err)
				}
				cells[i] = quote(cell)
			}
			sb.WriteString(strings.Join(cells, ","))
			sb.WriteByte('\n')
		}

		sb.WriteByte('\n')
	}

	return []byte(sb.String()), nil
}

func cellValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case fmt.Stringer:
		return val.String(), nil
	case bool, int, int64, float64:
		return fmt.Sprint(val), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
