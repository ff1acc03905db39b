package handlers

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/services/resource"
)

// stringField returns a string field of a request, or "" when absent or not a string
func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.Fields[key].GetStringValue()
}

// stringList reads a list of strings. A single string is split on commas.
func stringList(s *structpb.Struct, key string) ([]string, bool, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, false, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		var out []string
		for _, part := range strings.Split(kind.StringValue, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, true, nil
	case *structpb.Value_ListValue:
		out := make([]string, 0, len(kind.ListValue.Values))
		for i, item := range kind.ListValue.Values {
			str, ok := item.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return nil, true, fmt.Errorf("%s[%d] must be a string", key, i)
			}
			out = append(out, str.StringValue)
		}
		return out, true, nil
	default:
		return nil, true, fmt.Errorf("%s must be a list of strings", key)
	}
}

// includes returns the requested includes; nil selects the resource defaults
func includes(s *structpb.Struct) ([]string, error) {
	list, present, err := stringList(s, "include")
	if err != nil {
		return nil, err
	}
	if present && list == nil {
		list = []string{}
	}
	return list, nil
}

// flags reads a {name: bool} struct field
func flags(s *structpb.Struct, key string) map[string]bool {
	out := make(map[string]bool)
	for name, v := range s.GetFields()[key].GetStructValue().GetFields() {
		out[name] = v.GetBoolValue()
	}
	return out
}

// overrides reads call-scoped manipulation configuration
func overrides(req *structpb.Struct) (entities.ManipulationConfig, bool) {
	o := req.GetFields()["overrides"].GetStructValue()
	if o == nil {
		return entities.ManipulationConfig{}, false
	}
	return entities.ManipulationConfig{
		AllowReplace:   flags(o, "allow_replace"),
		DeleteOnDetach: flags(o, "delete_on_detach"),
	}, true
}

// requestContext reads filters, sorting and pagination of a List request
func requestContext(req *structpb.Struct) (*entities.RequestContext, error) {
	rc := &entities.RequestContext{}

	if f := req.GetFields()["filter"]; f != nil {
		filter := f.GetStructValue()
		if filter == nil {
			return nil, fmt.Errorf("filter must be an object")
		}
		rc.Filters = filter.AsMap()
	}

	sortKeys, _, err := stringList(req, "sort")
	if err != nil {
		return nil, err
	}
	rc.Sorting = entities.ParseSortKeys(sortKeys)

	if p := req.GetFields()["page"].GetStructValue(); p != nil {
		rc.PageNumber = int(p.Fields["number"].GetNumberValue())
		rc.PageSize = int(p.Fields["size"].GetNumberValue())
		rc.PageOffset = int(p.Fields["offset"].GetNumberValue())
		rc.PageLimit = int(p.Fields["limit"].GetNumberValue())
		rc.PageCursor = p.Fields["cursor"].GetStringValue()
		rc.StandardPagination = rc.PageNumber > 0
	}
	return rc, nil
}

// presenter renders records with their API attribute and include names
type presenter struct {
	adapters *resource.AdapterFactory
}

func (p presenter) record(r *entities.Record) (map[string]any, error) {
	adapter, err := p.adapters.ForType(r.Type)
	if err != nil {
		return nil, err
	}

	attributes := make(map[string]any)
	for _, column := range r.Columns() {
		name := adapter.AttributeForDataKey(column)
		if name == "" {
			continue
		}
		attributes[name] = protoValue(r.Get(column))
	}

	out := map[string]any{
		"type":       r.Type,
		"id":         r.ID,
		"attributes": attributes,
	}

	if len(r.Relations) > 0 {
		relationships := make(map[string]any)
		for relName, related := range r.Relations {
			items, err := p.records(related)
			if err != nil {
				return nil, err
			}
			relationships[includeName(adapter, relName)] = items
		}
		out["relationships"] = relationships
	}
	return out, nil
}

func (p presenter) records(records []*entities.Record) ([]any, error) {
	items := make([]any, 0, len(records))
	for _, r := range records {
		item, err := p.record(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func includeName(adapter resource.Adapter, relation string) string {
	for _, include := range adapter.AvailableIncludeKeys() {
		if adapter.DataKeyForInclude(include) == relation {
			return include
		}
	}
	return relation
}

// protoValue converts stored values into types structpb accepts
func protoValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, int, int32, int64, uint32, uint64, float32, float64:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}
