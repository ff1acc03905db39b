package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
	"github.com/asakaida/datastore/internal/services/manipulation"
	"github.com/asakaida/datastore/internal/services/query"
	"github.com/asakaida/datastore/internal/services/resource"
	"github.com/asakaida/datastore/pkg/cache"
)

// DataStoreInterface defines the record and relationship operations exposed to handlers
type DataStoreInterface interface {
	GetByID(ctx context.Context, recordType, id string, includes []string) (*entities.Record, error)
	GetManyByID(ctx context.Context, recordType string, ids []string, includes []string) ([]*entities.Record, error)
	GetByContext(ctx context.Context, recordType string, rc *entities.RequestContext, includes []string) (*Page, error)
	Create(ctx context.Context, recordType string, attributes map[string]any) (*entities.Record, error)
	UpdateByID(ctx context.Context, recordType, id string, attributes map[string]any) (*entities.Record, error)
	DeleteByID(ctx context.Context, recordType, id string) error
	AttachRelatedRecords(ctx context.Context, parent *entities.Record, include string, records []*entities.Record, detaching bool, opts ...manipulation.CallOption) (bool, error)
	DetachRelatedRecords(ctx context.Context, parent *entities.Record, include string, records []*entities.Record, opts ...manipulation.CallOption) (bool, error)
	DetachRelatedRecordsByID(ctx context.Context, parent *entities.Record, include string, ids []string, opts ...manipulation.CallOption) (bool, error)
}

var _ DataStoreInterface = (*DataStore)(nil)

// Page is one page of a list query
type Page struct {
	Records    []*entities.Record
	Total      int // Matching records across all pages
	PageNumber int // Zero when the query was not paginated
	PageSize   int
}

// DataStore reads and writes records of a schema and delegates relation changes to the engine
type DataStore struct {
	schema   *entities.Schema
	repo     repositories.DataRepository
	engine   *manipulation.Engine
	adapters *resource.AdapterFactory
	includes *query.IncludeResolver
	logger   *zap.Logger

	cache             cache.Cache
	filterStrategy    string
	reversePrefix     string
	defaultPageSize   int
	maxPageSize       int
	strategyDriverKey string
}

// DataStoreOption configures a DataStore
type DataStoreOption func(*DataStore)

// WithEngine enables relationship manipulation
func WithEngine(engine *manipulation.Engine) DataStoreOption {
	return func(d *DataStore) {
		d.engine = engine
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) DataStoreOption {
	return func(d *DataStore) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithCache sets the cache for resolved includes
func WithCache(c cache.Cache) DataStoreOption {
	return func(d *DataStore) {
		if c != nil {
			d.cache = c
		}
	}
}

// WithPageSizes sets the default and maximum page size; non-positive values keep the defaults
func WithPageSizes(defaultSize, maxSize int) DataStoreOption {
	return func(d *DataStore) {
		if defaultSize > 0 {
			d.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			d.maxPageSize = maxSize
		}
	}
}

// WithFilterDefaults sets the default filter strategy and the reversed filter prefix
func WithFilterDefaults(strategy, reversePrefix string) DataStoreOption {
	return func(d *DataStore) {
		d.filterStrategy = strategy
		d.reversePrefix = reversePrefix
	}
}

// WithStrategyDriver selects the filter and sort class map instead of the repository's driver
func WithStrategyDriver(driver string) DataStoreOption {
	return func(d *DataStore) {
		d.strategyDriverKey = driver
	}
}

// NewDataStore creates a data store over the repository
func NewDataStore(schema *entities.Schema, repo repositories.DataRepository, opts ...DataStoreOption) *DataStore {
	d := &DataStore{
		schema:          schema,
		repo:            repo,
		adapters:        resource.NewAdapterFactory(schema),
		logger:          zap.NewNop(),
		cache:           cache.Noop{},
		reversePrefix:   "!",
		defaultPageSize: 10,
		maxPageSize:     100,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.includes = query.NewIncludeResolver(schema, d.adapters, d.cache)
	return d
}

// Schema returns the schema the data store serves
func (d *DataStore) Schema() *entities.Schema {
	return d.schema
}

// Adapter returns the resource adapter of a record type
func (d *DataStore) Adapter(recordType string) (resource.Adapter, error) {
	return d.adapters.ForType(recordType)
}

func (d *DataStore) strategyDriver() string {
	if d.strategyDriverKey != "" {
		return d.strategyDriverKey
	}
	return d.repo.Driver()
}

func (d *DataStore) entityType(recordType string) (*entities.EntityType, error) {
	t := d.schema.GetType(recordType)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", repositories.ErrUnknownType, recordType)
	}
	return t, nil
}

// GetByID returns a record with its includes loaded
func (d *DataStore) GetByID(ctx context.Context, recordType, id string, includes []string) (*entities.Record, error) {
	if _, err := d.entityType(recordType); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", manipulation.ErrInvalidArgument)
	}

	record, err := d.repo.Find(ctx, recordType, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s:%s", ErrNotFound, recordType, id)
	}

	if err := d.loadIncludes(ctx, recordType, []*entities.Record{record}, includes); err != nil {
		return nil, err
	}
	return record, nil
}

// GetManyByID returns the existing records among ids, in the order of ids
func (d *DataStore) GetManyByID(ctx context.Context, recordType string, ids []string, includes []string) ([]*entities.Record, error) {
	if _, err := d.entityType(recordType); err != nil {
		return nil, err
	}

	records, err := d.repo.FindMany(ctx, recordType, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}

	if err := d.loadIncludes(ctx, recordType, records, includes); err != nil {
		return nil, err
	}
	return records, nil
}

// GetByContext lists records matching the request filters, sorted and paginated
func (d *DataStore) GetByContext(ctx context.Context, recordType string, rc *entities.RequestContext, includes []string) (*Page, error) {
	t, err := d.entityType(recordType)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		rc = &entities.RequestContext{}
	}
	if rc.ShouldBeCursorPaginated() {
		return nil, ErrUnsupportedPagination
	}

	adapter, err := d.adapters.ForType(recordType)
	if err != nil {
		return nil, err
	}

	q, err := d.repo.Query(recordType)
	if err != nil {
		return nil, err
	}

	driver := d.strategyDriver()
	filters := query.NewFilterHandler(query.NewFilterStrategyFactory(driver, d.filterStrategy), d.schema, t, adapter, d.reversePrefix)
	if q, err = filters.Apply(q, rc.Filters); err != nil {
		return nil, fmt.Errorf("failed to apply filters: %w", err)
	}
	if q, err = query.ApplySorting(q, query.NewSortStrategyFactory(driver, ""), t, adapter, rc.Sorting); err != nil {
		return nil, fmt.Errorf("failed to apply sorting: %w", err)
	}
	q = q.OrderBy(t.Table + ".id asc")

	page := &Page{}
	switch {
	case rc.ShouldBePaginated():
		page.PageSize = d.pageSize(rc.PageSize)
		page.PageNumber = rc.PageNumber
		if page.PageNumber < 1 {
			page.PageNumber = 1
		}
		if page.Total, err = d.repo.Count(ctx, q); err != nil {
			return nil, err
		}
		q = q.Limit(uint64(page.PageSize)).Offset(uint64((page.PageNumber - 1) * page.PageSize))
	case rc.PageLimit > 0:
		if page.Total, err = d.repo.Count(ctx, q); err != nil {
			return nil, err
		}
		page.PageSize = d.pageSize(rc.PageLimit)
		q = q.Limit(uint64(page.PageSize))
		if rc.PageOffset > 0 {
			q = q.Offset(uint64(rc.PageOffset))
		}
	}

	if page.Records, err = d.repo.Select(ctx, recordType, q); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	if page.PageSize == 0 {
		page.Total = len(page.Records)
	}

	d.logger.Debug("listed records",
		zap.String("type", recordType),
		zap.Int("count", len(page.Records)),
		zap.Int("total", page.Total),
	)

	if err := d.loadIncludes(ctx, recordType, page.Records, includes); err != nil {
		return nil, err
	}
	return page, nil
}

func (d *DataStore) pageSize(requested int) int {
	if requested <= 0 {
		return d.defaultPageSize
	}
	if requested > d.maxPageSize {
		return d.maxPageSize
	}
	return requested
}

// Create stores a new record. Attribute keys are resource attribute names.
func (d *DataStore) Create(ctx context.Context, recordType string, attributes map[string]any) (*entities.Record, error) {
	columns, err := d.columns(recordType, attributes)
	if err != nil {
		return nil, err
	}

	record := entities.NewRecord(recordType, columns)
	ok, err := d.repo.Save(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	if !ok {
		d.logger.Warn("create rejected", zap.String("type", recordType))
		return nil, fmt.Errorf("%w: create %s", ErrWriteRejected, recordType)
	}
	return d.repo.Find(ctx, recordType, record.ID)
}

// UpdateByID writes the given attributes of an existing record and leaves the rest untouched
func (d *DataStore) UpdateByID(ctx context.Context, recordType, id string, attributes map[string]any) (*entities.Record, error) {
	columns, err := d.columns(recordType, attributes)
	if err != nil {
		return nil, err
	}

	existing, err := d.repo.Find(ctx, recordType, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s:%s", ErrNotFound, recordType, id)
	}

	ok, err := d.repo.Save(ctx, entities.LoadedRecord(recordType, id, columns))
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	if !ok {
		d.logger.Warn("update rejected", zap.String("type", recordType), zap.String("id", id))
		return nil, fmt.Errorf("%w: update %s:%s", ErrWriteRejected, recordType, id)
	}
	return d.repo.Find(ctx, recordType, id)
}

// DeleteByID removes a record
func (d *DataStore) DeleteByID(ctx context.Context, recordType, id string) error {
	if _, err := d.entityType(recordType); err != nil {
		return err
	}

	existing, err := d.repo.Find(ctx, recordType, id)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s:%s", ErrNotFound, recordType, id)
	}

	ok, err := d.repo.Delete(ctx, existing)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if !ok {
		d.logger.Warn("delete rejected", zap.String("type", recordType), zap.String("id", id))
		return fmt.Errorf("%w: delete %s:%s", ErrWriteRejected, recordType, id)
	}
	return nil
}

// columns translates resource attribute names to writable columns
func (d *DataStore) columns(recordType string, attributes map[string]any) (map[string]any, error) {
	t, err := d.entityType(recordType)
	if err != nil {
		return nil, err
	}
	adapter, err := d.adapters.ForType(recordType)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]any, len(attributes))
	for attr, value := range attributes {
		column := adapter.DataKeyForAttribute(attr)
		if column == "id" || !t.HasColumn(column) {
			return nil, fmt.Errorf("%w: unknown attribute %q on %s", manipulation.ErrInvalidArgument, attr, recordType)
		}
		columns[column] = value
	}
	return columns, nil
}

// AttachRelatedRecords attaches records through the relation an include names.
// With detaching set, the relation is replaced by records.
func (d *DataStore) AttachRelatedRecords(ctx context.Context, parent *entities.Record, include string, records []*entities.Record, detaching bool, opts ...manipulation.CallOption) (bool, error) {
	relation, err := d.relationFor(parent, include)
	if err != nil {
		return false, err
	}
	return d.engine.Attach(ctx, parent, relation, records, detaching, opts...)
}

// DetachRelatedRecords detaches records from the relation an include names
func (d *DataStore) DetachRelatedRecords(ctx context.Context, parent *entities.Record, include string, records []*entities.Record, opts ...manipulation.CallOption) (bool, error) {
	relation, err := d.relationFor(parent, include)
	if err != nil {
		return false, err
	}
	return d.engine.Detach(ctx, parent, relation, records, opts...)
}

// DetachRelatedRecordsByID detaches records identified by id from the relation an include names
func (d *DataStore) DetachRelatedRecordsByID(ctx context.Context, parent *entities.Record, include string, ids []string, opts ...manipulation.CallOption) (bool, error) {
	relation, err := d.relationFor(parent, include)
	if err != nil {
		return false, err
	}
	return d.engine.DetachByID(ctx, parent, relation, ids, opts...)
}

func (d *DataStore) relationFor(parent *entities.Record, include string) (string, error) {
	if d.engine == nil {
		return "", ErrManipulationUnsupported
	}
	if parent == nil {
		return "", &manipulation.InvalidArgumentError{Reason: "parent record is required"}
	}

	adapter, err := d.adapters.ForType(parent.Type)
	if err != nil {
		return "", &manipulation.UnknownRelationError{Type: parent.Type, Relation: include}
	}
	relation := adapter.DataKeyForInclude(include)
	if relation == "" {
		return "", &manipulation.UnknownRelationError{Type: parent.Type, Relation: include}
	}
	return relation, nil
}

// loadIncludes resolves includes (or the resource defaults when nil) and loads each relation path
func (d *DataStore) loadIncludes(ctx context.Context, recordType string, records []*entities.Record, includes []string) error {
	if len(records) == 0 {
		return nil
	}
	if includes == nil {
		adapter, err := d.adapters.ForType(recordType)
		if err != nil {
			return err
		}
		includes = adapter.DefaultIncludes()
	}

	paths, err := d.includes.Resolve(ctx, recordType, includes)
	if err != nil {
		return fmt.Errorf("failed to resolve includes: %w", err)
	}

	for _, path := range paths {
		if err := d.loadPath(ctx, records, strings.Split(path, ".")); err != nil {
			return err
		}
	}
	return nil
}

func (d *DataStore) loadPath(ctx context.Context, records []*entities.Record, path []string) error {
	if len(path) == 0 {
		return nil
	}

	name := path[0]
	var next []*entities.Record
	for _, record := range records {
		related, loaded := record.Relations[name]
		if !loaded {
			rel := d.schema.GetRelation(record.Type, name)
			if rel == nil {
				continue
			}
			var err error
			related, err = d.repo.Related(ctx, record, rel)
			if err != nil {
				return fmt.Errorf("failed to load %s of %s: %w", name, record.Identity(), err)
			}
			record.SetRelation(name, related)
		}
		next = append(next, related...)
	}

	return d.loadPath(ctx, next, path[1:])
}
