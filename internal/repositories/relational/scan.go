package relational

import (
	"database/sql"
	"fmt"

	"github.com/asakaida/datastore/internal/entities"
)

// scanRecords maps every row to a stored record of recordType.
// The id column becomes the record ID; the rest become attributes.
func scanRecords(rows *sql.Rows, recordType string) ([]*entities.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var records []*entities.Record
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var id string
		attrs := make(map[string]any, len(cols)-1)
		for i, col := range cols {
			v := normalize(values[i])
			if col == "id" {
				id = fmt.Sprint(v)
				continue
			}
			attrs[col] = v
		}
		records = append(records, entities.LoadedRecord(recordType, id, attrs))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return records, nil
}

// normalize turns driver text representations into strings
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
