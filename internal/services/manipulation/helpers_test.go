package manipulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
	"github.com/asakaida/datastore/internal/repositories/memory"
	"github.com/asakaida/datastore/internal/testutil"
)

// recordingStore counts writes and can reject them, to observe short-circuiting
type recordingStore struct {
	repositories.Store

	saves   int
	deletes int
	pivots  int

	rejectSave   func(*entities.Record) bool
	rejectDelete func(*entities.Record) bool
}

func (s *recordingStore) Save(ctx context.Context, record *entities.Record) (bool, error) {
	if s.rejectSave != nil && s.rejectSave(record) {
		return false, nil
	}
	s.saves++
	return s.Store.Save(ctx, record)
}

func (s *recordingStore) SaveMany(ctx context.Context, records []*entities.Record) (bool, error) {
	for _, r := range records {
		if ok, err := s.Save(ctx, r); err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func (s *recordingStore) Delete(ctx context.Context, record *entities.Record) (bool, error) {
	if s.rejectDelete != nil && s.rejectDelete(record) {
		return false, nil
	}
	s.deletes++
	return s.Store.Delete(ctx, record)
}

func (s *recordingStore) AttachPivots(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor, ids []entities.Identity) (bool, error) {
	s.pivots++
	return s.Store.AttachPivots(ctx, parent, rel, ids)
}

func (s *recordingStore) DetachPivots(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor, ids []entities.Identity) (bool, error) {
	s.pivots++
	return s.Store.DetachPivots(ctx, parent, rel, ids)
}

func (s *recordingStore) writes() int {
	return s.saves + s.deletes + s.pivots
}

func (s *recordingStore) reset() {
	s.saves, s.deletes, s.pivots = 0, 0, 0
}

type fixture struct {
	schema *entities.Schema
	mem    *memory.Store
	store  *recordingStore
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	schema := testutil.BlogSchema()
	mem := memory.New(schema)
	store := &recordingStore{Store: mem}
	return &fixture{
		schema: schema,
		mem:    mem,
		store:  store,
		engine: NewEngine(schema, store),
	}
}

// create persists a record directly, bypassing write counting
func (f *fixture) create(t *testing.T, recordType string, attrs map[string]any) *entities.Record {
	t.Helper()
	r := entities.NewRecord(recordType, attrs)
	ok, err := f.mem.Save(context.Background(), r)
	require.NoError(t, err)
	require.True(t, ok)
	return r
}

func (f *fixture) reload(t *testing.T, r *entities.Record) *entities.Record {
	t.Helper()
	found, err := f.mem.Find(context.Background(), r.Type, r.ID)
	require.NoError(t, err)
	return found
}

func (f *fixture) related(t *testing.T, parent *entities.Record, relation string) []entities.Identity {
	t.Helper()
	rel := f.schema.GetRelation(parent.Type, relation)
	require.NotNil(t, rel)
	records, err := f.mem.Related(context.Background(), parent, rel)
	require.NoError(t, err)
	return entities.Identities(records)
}

func ids(records ...*entities.Record) []entities.Identity {
	return entities.Identities(records)
}
