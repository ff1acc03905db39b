package manipulation

import "github.com/asakaida/datastore/internal/entities"

// NormalizeRecords converts a loosely typed records argument into a record list.
// Lists and a single record pointer are accepted; scalars are rejected.
func NormalizeRecords(v any) ([]*entities.Record, error) {
	switch records := v.(type) {
	case nil:
		return nil, invalidArgument("records must be a list, got nil")
	case []*entities.Record:
		return records, nil
	case []entities.Record:
		out := make([]*entities.Record, len(records))
		for i := range records {
			out[i] = &records[i]
		}
		return out, nil
	case *entities.Record:
		if records == nil {
			return nil, invalidArgument("records must be a list, got nil record")
		}
		return []*entities.Record{records}, nil
	case []any:
		out := make([]*entities.Record, 0, len(records))
		for i, item := range records {
			r, ok := item.(*entities.Record)
			if !ok || r == nil {
				return nil, invalidArgument("element %d is not a record", i)
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, invalidArgument("records must be a list, got %T", v)
	}
}
