package handlers

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/services"
	"github.com/asakaida/datastore/internal/services/manipulation"
	"github.com/asakaida/datastore/internal/services/resource"
)

var _ DataStoreServer = (*DataStoreHandler)(nil)

// DataStoreHandler handles DataStoreService gRPC requests
type DataStoreHandler struct {
	dataStore services.DataStoreInterface
	adapters  *resource.AdapterFactory
	present   presenter
}

// NewDataStoreHandler creates a new DataStoreHandler
func NewDataStoreHandler(dataStore services.DataStoreInterface, schema *entities.Schema) *DataStoreHandler {
	adapters := resource.NewAdapterFactory(schema)
	return &DataStoreHandler{
		dataStore: dataStore,
		adapters:  adapters,
		present:   presenter{adapters: adapters},
	}
}

// Attach handles the Attach RPC.
// Request: {parent: {type, id}, include, records: [{type, id} | {type, attributes}], detaching, overrides}
func (h *DataStoreHandler) Attach(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	parent, include, err := h.target(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	records, err := h.records(ctx, req, false)
	if err != nil {
		return nil, toStatus(err)
	}

	detaching := req.Fields["detaching"].GetBoolValue()
	ok, err := h.dataStore.AttachRelatedRecords(ctx, parent, include, records, detaching, callOptions(req)...)
	if err != nil {
		return nil, toStatus(err)
	}
	return okResponse(ok)
}

// Detach handles the Detach RPC.
// Request: {parent: {type, id}, include, records: [{type, id}], overrides}
func (h *DataStoreHandler) Detach(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	parent, include, err := h.target(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	// Records deleted since the caller read them are not members anymore
	records, err := h.records(ctx, req, true)
	if err != nil {
		return nil, toStatus(err)
	}

	ok, err := h.dataStore.DetachRelatedRecords(ctx, parent, include, records, callOptions(req)...)
	if err != nil {
		return nil, toStatus(err)
	}
	return okResponse(ok)
}

// DetachByID handles the DetachByID RPC.
// Request: {parent: {type, id}, include, ids: [string], overrides}
func (h *DataStoreHandler) DetachByID(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	parent, include, err := h.target(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	ids, _, err := stringList(req, "ids")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if _, present := req.Fields["ids"]; present && ids == nil {
		ids = []string{}
	}

	ok, err := h.dataStore.DetachRelatedRecordsByID(ctx, parent, include, ids, callOptions(req)...)
	if err != nil {
		return nil, toStatus(err)
	}
	return okResponse(ok)
}

// Get handles the Get RPC.
// Request: {type, id, include}
func (h *DataStoreHandler) Get(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	recordType, id := stringField(req, "type"), stringField(req, "id")
	if recordType == "" || id == "" {
		return nil, status.Error(codes.InvalidArgument, "type and id are required")
	}

	inc, err := includes(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	record, err := h.dataStore.GetByID(ctx, recordType, id, inc)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := h.present.record(record)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{"record": out})
}

// List handles the List RPC.
// Request: {type, filter: {...}, sort: "-position,title", page: {number, size}, include}
func (h *DataStoreHandler) List(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	recordType := stringField(req, "type")
	if recordType == "" {
		return nil, status.Error(codes.InvalidArgument, "type is required")
	}

	rc, err := requestContext(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	inc, err := includes(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	page, err := h.dataStore.GetByContext(ctx, recordType, rc, inc)
	if err != nil {
		return nil, toStatus(err)
	}

	items, err := h.present.records(page.Records)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		"records":     items,
		"total":       page.Total,
		"page_number": page.PageNumber,
		"page_size":   page.PageSize,
	})
}

// target resolves the persisted parent and the include of a relation request
func (h *DataStoreHandler) target(ctx context.Context, req *structpb.Struct) (*entities.Record, string, error) {
	ref := req.GetFields()["parent"].GetStructValue()
	parentType, parentID := stringField(ref, "type"), stringField(ref, "id")
	if parentType == "" || parentID == "" {
		return nil, "", status.Error(codes.InvalidArgument, "parent type and id are required")
	}

	include := stringField(req, "include")
	if include == "" {
		return nil, "", status.Error(codes.InvalidArgument, "include is required")
	}

	parent, err := h.dataStore.GetByID(ctx, parentType, parentID, []string{})
	if err != nil {
		return nil, "", err
	}
	return parent, include, nil
}

// records decodes the records list; anything but a list is rejected.
// With skipMissing, references to rows that no longer exist are dropped.
func (h *DataStoreHandler) records(ctx context.Context, req *structpb.Struct, skipMissing bool) ([]*entities.Record, error) {
	v, ok := req.Fields["records"]
	if !ok {
		return manipulation.NormalizeRecords(nil)
	}

	list := v.GetListValue()
	if list == nil {
		return manipulation.NormalizeRecords(v.AsInterface())
	}

	items := make([]any, 0, len(list.Values))
	for i, item := range list.Values {
		ref := item.GetStructValue()
		if ref == nil {
			items = append(items, item.AsInterface())
			continue
		}
		record, err := h.record(ctx, ref)
		if skipMissing && errors.Is(err, services.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		items = append(items, record)
	}
	return manipulation.NormalizeRecords(items)
}

// record loads a referenced record, or builds an unsaved one from attributes
func (h *DataStoreHandler) record(ctx context.Context, ref *structpb.Struct) (*entities.Record, error) {
	recordType := stringField(ref, "type")
	if recordType == "" {
		return nil, &manipulation.InvalidArgumentError{Reason: "record type is required"}
	}

	if id := stringField(ref, "id"); id != "" {
		return h.dataStore.GetByID(ctx, recordType, id, []string{})
	}

	adapter, err := h.adapters.ForType(recordType)
	if err != nil {
		return nil, err
	}
	columns := make(map[string]any)
	for name, value := range ref.GetFields()["attributes"].GetStructValue().AsMap() {
		columns[adapter.DataKeyForAttribute(name)] = value
	}
	return entities.NewRecord(recordType, columns), nil
}

func callOptions(req *structpb.Struct) []manipulation.CallOption {
	if o, ok := overrides(req); ok {
		return []manipulation.CallOption{manipulation.WithOverrides(o)}
	}
	return nil
}

func okResponse(ok bool) (*structpb.Struct, error) {
	return newStruct(map[string]any{"ok": ok})
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}
