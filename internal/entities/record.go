package entities

import (
	"fmt"
	"sort"
)

// Identity identifies a persisted record across types.
// Example: comment:42
type Identity struct {
	Type string // Record type (e.g., "comment")
	ID   string // Record ID (e.g., "42")
}

// String returns a string representation of the identity
// Format: type:id
func (i Identity) String() string {
	return fmt.Sprintf("%s:%s", i.Type, i.ID)
}

// IsZero reports whether the identity is unset
func (i Identity) IsZero() bool {
	return i.Type == "" && i.ID == ""
}

// Record represents a single row of a typed entity
type Record struct {
	Type       string               // Record type (e.g., "post")
	ID         string               // Primary key, empty until persisted
	Attributes map[string]any       // Column values keyed by column name
	Relations  map[string][]*Record // Eagerly loaded relations keyed by relation name

	persisted bool
}

// NewRecord creates an unsaved record of the given type
func NewRecord(recordType string, attributes map[string]any) *Record {
	if attributes == nil {
		attributes = make(map[string]any)
	}
	return &Record{Type: recordType, Attributes: attributes}
}

// LoadedRecord creates a record that reflects a stored row
func LoadedRecord(recordType, id string, attributes map[string]any) *Record {
	r := NewRecord(recordType, attributes)
	r.ID = id
	r.persisted = true
	return r
}

// Exists reports whether the record has been stored
func (r *Record) Exists() bool {
	return r.persisted && r.ID != ""
}

// MarkPersisted flags the record as stored under the given ID
func (r *Record) MarkPersisted(id string) {
	r.ID = id
	r.persisted = true
}

// MarkDeleted flags the record as no longer stored
func (r *Record) MarkDeleted() {
	r.persisted = false
}

// Identity returns the (type, id) pair of the record
func (r *Record) Identity() Identity {
	return Identity{Type: r.Type, ID: r.ID}
}

// Get returns the attribute value for a column
func (r *Record) Get(column string) any {
	if r.Attributes == nil {
		return nil
	}
	return r.Attributes[column]
}

// GetString returns the attribute value for a column formatted as string.
// nil yields "".
func (r *Record) GetString(column string) string {
	v := r.Get(column)
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// Set assigns an attribute value
func (r *Record) Set(column string, value any) {
	if r.Attributes == nil {
		r.Attributes = make(map[string]any)
	}
	r.Attributes[column] = value
}

// SetRelation stores eagerly loaded related records
func (r *Record) SetRelation(name string, related []*Record) {
	if r.Relations == nil {
		r.Relations = make(map[string][]*Record)
	}
	r.Relations[name] = related
}

// Columns returns the attribute keys in sorted order
func (r *Record) Columns() []string {
	cols := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Validate checks that the record carries a type
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("record is required")
	}
	if r.Type == "" {
		return fmt.Errorf("record type is required")
	}
	return nil
}

// Identities returns the identities of the given records, skipping unsaved ones
func Identities(records []*Record) []Identity {
	ids := make([]Identity, 0, len(records))
	for _, r := range records {
		if r == nil || !r.Exists() {
			continue
		}
		ids = append(ids, r.Identity())
	}
	return ids
}
