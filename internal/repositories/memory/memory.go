// Package memory provides an in-memory implementation of the record and relation repositories.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

var _ repositories.Store = (*Store)(nil)

// pivotRow is a join table row keyed by column name, so both sides of a
// join relation read the same rows.
type pivotRow struct {
	table  string
	values map[string]string
}

func (p pivotRow) equal(other pivotRow) bool {
	if p.table != other.table || len(p.values) != len(other.values) {
		return false
	}
	for k, v := range p.values {
		if other.values[k] != v {
			return false
		}
	}
	return true
}

// Store keeps records and join rows in process memory.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	schema *entities.Schema

	rows   map[string]map[string]map[string]any // type -> id -> attributes
	order  map[string][]string                  // type -> ids in insertion order
	pivots []pivotRow                           // join rows in insertion order

	newID func() string
}

// New creates an empty store. A nil schema accepts any record type.
func New(schema *entities.Schema) *Store {
	return &Store{
		schema: schema,
		rows:   make(map[string]map[string]map[string]any),
		order:  make(map[string][]string),
		newID:  uuid.NewString,
	}
}

// Find retrieves a record by type and ID
func (s *Store) Find(ctx context.Context, recordType string, id string) (*entities.Record, error) {
	if err := s.checkType(recordType); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(recordType, id), nil
}

// FindMany retrieves records by ID, skipping missing ones
func (s *Store) FindMany(ctx context.Context, recordType string, ids []string) ([]*entities.Record, error) {
	if err := s.checkType(recordType); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*entities.Record, 0, len(ids))
	for _, id := range ids {
		if r := s.load(recordType, id); r != nil {
			records = append(records, r)
		}
	}
	return records, nil
}

// Save inserts or updates a record
func (s *Store) Save(ctx context.Context, record *entities.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, fmt.Errorf("invalid record: %w", err)
	}
	if err := s.checkType(record.Type); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.rows[record.Type]
	if table == nil {
		table = make(map[string]map[string]any)
		s.rows[record.Type] = table
	}

	if record.Exists() {
		stored, ok := table[record.ID]
		if !ok {
			return false, nil
		}
		for k, v := range record.Attributes {
			stored[k] = v
		}
		return true, nil
	}

	id := record.ID
	if id == "" {
		id = s.newID()
	}
	if _, ok := table[id]; ok {
		return false, nil
	}
	table[id] = copyAttributes(record.Attributes)
	s.order[record.Type] = append(s.order[record.Type], id)
	record.MarkPersisted(id)
	return true, nil
}

// SaveMany saves records in order and stops at the first rejected write
func (s *Store) SaveMany(ctx context.Context, records []*entities.Record) (bool, error) {
	for _, r := range records {
		ok, err := s.Save(ctx, r)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

// Delete removes a record and every join row referencing it
func (s *Store) Delete(ctx context.Context, record *entities.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, fmt.Errorf("invalid record: %w", err)
	}
	if !record.Exists() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.rows[record.Type]
	if _, ok := table[record.ID]; !ok {
		return false, nil
	}
	delete(table, record.ID)

	ids := s.order[record.Type]
	for i, id := range ids {
		if id == record.ID {
			s.order[record.Type] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}

	s.dropPivotsFor(record)
	record.MarkDeleted()
	return true, nil
}

// Related retrieves the records currently related to parent through rel
func (s *Store) Related(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor) ([]*entities.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch rel.Kind {
	case entities.SingularOwning:
		id := parent.GetString(rel.ForeignKey)
		targetType := rel.TargetType(parent)
		if id == "" || targetType == "" {
			return nil, nil
		}
		if r := s.load(targetType, id); r != nil {
			return []*entities.Record{r}, nil
		}
		return nil, nil

	case entities.SingularOwned, entities.PluralOwned:
		var related []*entities.Record
		for _, id := range s.order[rel.RelatedType] {
			attrs := s.rows[rel.RelatedType][id]
			if fmt.Sprint(attrs[rel.ForeignKey]) != parent.ID {
				continue
			}
			if rel.MorphType != "" && fmt.Sprint(attrs[rel.MorphType]) != parent.Type {
				continue
			}
			related = append(related, s.load(rel.RelatedType, id))
		}
		return related, nil

	case entities.PluralJoin:
		var related []*entities.Record
		for _, p := range s.pivots {
			if !s.pivotBelongsTo(p, parent, rel) {
				continue
			}
			if r := s.load(rel.RelatedType, p.values[rel.JoinRelatedKey]); r != nil {
				related = append(related, r)
			}
		}
		return related, nil
	}

	return nil, fmt.Errorf("unsupported relation kind: %s", rel.Kind)
}

// AttachPivots inserts join rows, ignoring rows that already exist.
// Rows pointing at a missing parent or related record are rejected,
// the way a foreign key on the join table would.
func (s *Store) AttachPivots(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor, ids []entities.Identity) (bool, error) {
	if rel.Kind != entities.PluralJoin {
		return false, fmt.Errorf("relation %s is not a join relation", rel.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[parent.Type][parent.ID]; !ok {
		return false, nil
	}
	for _, id := range ids {
		if _, ok := s.rows[rel.RelatedType][id.ID]; !ok {
			return false, nil
		}
	}

	for _, id := range ids {
		row := s.pivotFor(parent, rel, id.ID)
		if s.hasPivot(row) {
			continue
		}
		s.pivots = append(s.pivots, row)
	}
	return true, nil
}

// DetachPivots removes join rows for the given identities
func (s *Store) DetachPivots(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor, ids []entities.Identity) (bool, error) {
	if rel.Kind != entities.PluralJoin {
		return false, fmt.Errorf("relation %s is not a join relation", rel.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id.ID] = true
	}

	kept := s.pivots[:0]
	for _, p := range s.pivots {
		if s.pivotBelongsTo(p, parent, rel) && remove[p.values[rel.JoinRelatedKey]] {
			continue
		}
		kept = append(kept, p)
	}
	s.pivots = kept
	return true, nil
}

// Count returns the number of stored records of a type
func (s *Store) Count(recordType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows[recordType])
}

func (s *Store) checkType(recordType string) error {
	if s.schema == nil {
		return nil
	}
	if s.schema.GetType(recordType) == nil {
		return fmt.Errorf("%w: %s", repositories.ErrUnknownType, recordType)
	}
	return nil
}

func (s *Store) load(recordType, id string) *entities.Record {
	attrs, ok := s.rows[recordType][id]
	if !ok {
		return nil
	}
	return entities.LoadedRecord(recordType, id, copyAttributes(attrs))
}

func (s *Store) pivotFor(parent *entities.Record, rel *entities.RelationDescriptor, relatedID string) pivotRow {
	row := pivotRow{
		table: rel.JoinTable,
		values: map[string]string{
			rel.JoinParentKey:  parent.ID,
			rel.JoinRelatedKey: relatedID,
		},
	}
	if rel.JoinMorphType != "" {
		row.values[rel.JoinMorphType] = parent.Type
	}
	return row
}

func (s *Store) pivotBelongsTo(p pivotRow, parent *entities.Record, rel *entities.RelationDescriptor) bool {
	if p.table != rel.JoinTable || p.values[rel.JoinParentKey] != parent.ID {
		return false
	}
	return rel.JoinMorphType == "" || p.values[rel.JoinMorphType] == parent.Type
}

func (s *Store) hasPivot(row pivotRow) bool {
	for _, p := range s.pivots {
		if p.equal(row) {
			return true
		}
	}
	return false
}

// dropPivotsFor removes join rows on either side of a deleted record,
// mirroring ON DELETE CASCADE on the join tables.
func (s *Store) dropPivotsFor(record *entities.Record) {
	if s.schema == nil {
		return
	}

	kept := s.pivots[:0]
	for _, p := range s.pivots {
		if s.pivotReferences(p, record) {
			continue
		}
		kept = append(kept, p)
	}
	s.pivots = kept
}

func (s *Store) pivotReferences(p pivotRow, record *entities.Record) bool {
	for _, t := range s.schema.Types {
		for _, rel := range t.Relations {
			if rel.Kind != entities.PluralJoin || rel.JoinTable != p.table {
				continue
			}
			if rel.RelatedType == record.Type && p.values[rel.JoinRelatedKey] == record.ID {
				return true
			}
			if t.Name == record.Type && s.pivotBelongsTo(p, record, rel) {
				return true
			}
		}
	}
	return false
}

func copyAttributes(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
