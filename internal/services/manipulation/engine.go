package manipulation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

// Recorder receives one observation per engine call.
// outcome is "success", "failed" (a persistence step was rejected) or "error".
type Recorder interface {
	RecordManipulation(operation, kind, outcome string)
}

// Engine attaches, replaces and detaches related records of a persisted parent.
// Calls run synchronously and are not wrapped in a transaction: a false result
// may leave the relation partially modified.
type Engine struct {
	classifier *Classifier
	store      repositories.Store
	config     *StaticConfig
	logger     *zap.Logger
	recorder   Recorder
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// WithConfig replaces the static configuration derived from the schema
func WithConfig(config *StaticConfig) Option {
	return func(e *Engine) {
		if config != nil {
			e.config = config
		}
	}
}

// NewEngine creates an engine over the schema and store
func NewEngine(schema *entities.Schema, store repositories.Store, opts ...Option) *Engine {
	e := &Engine{
		classifier: NewClassifier(schema),
		store:      store,
		config:     NewStaticConfig(schema),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type callOptions struct {
	overrides []entities.ManipulationConfig
}

// CallOption configures a single attach or detach call
type CallOption func(*callOptions)

// WithOverrides supplies call-scoped configuration that takes precedence over type defaults
func WithOverrides(config entities.ManipulationConfig) CallOption {
	return func(o *callOptions) {
		o.overrides = append(o.overrides, config)
	}
}

// Attach makes records related to parent through the named relation.
// With detaching set, records that are not in the list leave the relation;
// plural relations need allow-replace for that.
func (e *Engine) Attach(ctx context.Context, parent *entities.Record, relation string, records []*entities.Record, detaching bool, opts ...CallOption) (bool, error) {
	h, hd, policy, err := e.prepare(parent, relation, records, opts)
	if err != nil {
		e.observe("attach", nil, false, err)
		return false, err
	}

	rel := h.Descriptor()
	if detaching && !rel.Kind.IsSingular() && !policy.AllowReplace(relation) {
		err := &ReplaceNotAllowedError{Type: parent.Type, Relation: relation}
		e.observe("attach", rel, false, err)
		return false, err
	}

	e.logger.Debug("attaching related records",
		zap.String("parent", parent.Identity().String()),
		zap.String("relation", relation),
		zap.Stringer("kind", rel.Kind),
		zap.Int("records", len(records)),
		zap.Bool("detaching", detaching),
	)

	ok, err := hd.attach(ctx, h, records, detaching, policy)
	e.observe("attach", rel, ok, err)
	return ok, err
}

// Detach removes records from the named relation of parent.
// Records that are not currently related are ignored for plural relations;
// a singular relation reports false when the record is not the related one.
func (e *Engine) Detach(ctx context.Context, parent *entities.Record, relation string, records []*entities.Record, opts ...CallOption) (bool, error) {
	h, hd, policy, err := e.prepare(parent, relation, records, opts)
	if err != nil {
		e.observe("detach", nil, false, err)
		return false, err
	}

	rel := h.Descriptor()
	e.logger.Debug("detaching related records",
		zap.String("parent", parent.Identity().String()),
		zap.String("relation", relation),
		zap.Stringer("kind", rel.Kind),
		zap.Int("records", len(records)),
	)

	ok, err := hd.detach(ctx, h, records, policy)
	e.observe("detach", rel, ok, err)
	return ok, err
}

// DetachByID resolves ids against the related type and detaches the found records
func (e *Engine) DetachByID(ctx context.Context, parent *entities.Record, relation string, ids []string, opts ...CallOption) (bool, error) {
	if err := validateParent(parent); err != nil {
		return false, err
	}
	if ids == nil {
		return false, invalidArgument("ids must be a list")
	}

	rel, err := e.classifier.Classify(parent, relation)
	if err != nil {
		return false, err
	}

	relatedType := rel.TargetType(parent)
	if relatedType == "" {
		return false, invalidArgument("related type of %s cannot be resolved", relation)
	}

	records, err := e.store.FindMany(ctx, relatedType, ids)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s ids: %w", relatedType, err)
	}
	return e.Detach(ctx, parent, relation, records, opts...)
}

func (e *Engine) prepare(parent *entities.Record, relation string, records []*entities.Record, opts []CallOption) (*RelationHandle, handler, Policy, error) {
	if err := validateParent(parent); err != nil {
		return nil, nil, Policy{}, err
	}

	rel, err := e.classifier.Classify(parent, relation)
	if err != nil {
		return nil, nil, Policy{}, err
	}

	if err := validateRecords(rel, records); err != nil {
		return nil, nil, Policy{}, err
	}

	hd := handlerFor(rel.Kind, e.store)
	if hd == nil {
		return nil, nil, Policy{}, &UnknownRelationError{Type: parent.Type, Relation: relation}
	}

	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}
	policy := e.config.For(parent.Type, co.overrides...)

	return NewRelationHandle(e.store, parent, rel), hd, policy, nil
}

func (e *Engine) observe(operation string, rel *entities.RelationDescriptor, ok bool, err error) {
	kind := "unknown"
	if rel != nil {
		kind = rel.Kind.String()
	}

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
		e.logger.Warn("relationship manipulation error",
			zap.String("operation", operation),
			zap.String("kind", kind),
			zap.Error(err),
		)
	case !ok:
		outcome = "failed"
		e.logger.Warn("relationship manipulation could not be completed",
			zap.String("operation", operation),
			zap.String("kind", kind),
		)
	}

	if e.recorder != nil {
		e.recorder.RecordManipulation(operation, kind, outcome)
	}
}

func validateParent(parent *entities.Record) error {
	if parent == nil {
		return invalidArgument("parent record is required")
	}
	if parent.Type == "" {
		return invalidArgument("parent record type is required")
	}
	if !parent.Exists() {
		return invalidArgument("parent record %s must be persisted", parent.Type)
	}
	return nil
}

func validateRecords(rel *entities.RelationDescriptor, records []*entities.Record) error {
	if rel.Kind.IsSingular() {
		candidate := first(records)
		if len(records) > 0 && candidate == nil {
			return invalidArgument("related record for %s is nil", rel.Name)
		}
		if candidate != nil && !rel.AcceptsType(candidate.Type) {
			return invalidArgument("relation %s expects %s, got %s", rel.Name, rel.RelatedType, candidate.Type)
		}
		return nil
	}

	for i, r := range records {
		if r == nil {
			return invalidArgument("related record at index %d is nil", i)
		}
		if !rel.AcceptsType(r.Type) {
			return invalidArgument("relation %s expects %s, got %s at index %d", rel.Name, rel.RelatedType, r.Type, i)
		}
	}
	return nil
}
