package relational

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/asakaida/datastore/internal/entities"
)

// Find retrieves a record by type and ID, returning nil if it does not exist
func (c *Client) Find(ctx context.Context, recordType string, id string) (*entities.Record, error) {
	t, err := c.entityType(recordType)
	if err != nil {
		return nil, err
	}

	query := c.sb.
		Select(selectColumns(t)...).
		From(t.Table).
		Where(sq.Eq{t.Table + ".id": id})

	records, err := c.selectRecords(ctx, recordType, query)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// FindMany retrieves the records with the given IDs in the order of ids, skipping missing ones
func (c *Client) FindMany(ctx context.Context, recordType string, ids []string) ([]*entities.Record, error) {
	t, err := c.entityType(recordType)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*entities.Record{}, nil
	}

	query := c.sb.
		Select(selectColumns(t)...).
		From(t.Table).
		Where(sq.Eq{t.Table + ".id": ids})

	found, err := c.selectRecords(ctx, recordType, query)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Record, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	records := make([]*entities.Record, 0, len(found))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			records = append(records, r)
			delete(byID, id)
		}
	}
	return records, nil
}

// Save inserts a new record or updates the columns present on an existing one.
// A missing row on update or a constraint violation is reported as false.
func (c *Client) Save(ctx context.Context, record *entities.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, fmt.Errorf("invalid record: %w", err)
	}
	t, err := c.entityType(record.Type)
	if err != nil {
		return false, err
	}

	if record.Exists() {
		return c.update(ctx, t, record)
	}
	return c.insert(ctx, t, record)
}

func (c *Client) insert(ctx context.Context, t *entities.EntityType, record *entities.Record) (bool, error) {
	id := record.ID
	if id == "" {
		id = c.newID()
	}

	cols := []string{"id"}
	vals := []any{id}
	for _, col := range writableColumns(t, record) {
		cols = append(cols, col)
		vals = append(vals, record.Get(col))
	}

	query := c.sb.Insert(t.Table).Columns(cols...).Values(vals...)
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if isConstraintViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert %s: %w", t.Name, err)
	}

	record.MarkPersisted(id)
	return true, nil
}

func (c *Client) update(ctx context.Context, t *entities.EntityType, record *entities.Record) (bool, error) {
	cols := writableColumns(t, record)
	if len(cols) == 0 {
		existing, err := c.Find(ctx, record.Type, record.ID)
		if err != nil {
			return false, err
		}
		return existing != nil, nil
	}

	query := c.sb.Update(t.Table).Where(sq.Eq{"id": record.ID})
	for _, col := range cols {
		query = query.Set(col, record.Get(col))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update: %w", err)
	}

	res, err := c.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if isConstraintViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update %s: %w", t.Name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// SaveMany saves records in order and stops at the first rejected write
func (c *Client) SaveMany(ctx context.Context, records []*entities.Record) (bool, error) {
	for _, r := range records {
		ok, err := c.Save(ctx, r)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

// Delete removes a record and the join rows that reference it
func (c *Client) Delete(ctx context.Context, record *entities.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, fmt.Errorf("invalid record: %w", err)
	}
	t, err := c.entityType(record.Type)
	if err != nil {
		return false, err
	}
	if !record.Exists() {
		return false, nil
	}

	sqlStr, args, err := c.sb.Delete(t.Table).Where(sq.Eq{"id": record.ID}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete: %w", err)
	}

	// Join rows and the record go together, or not at all.
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := c.deletePivotsFor(ctx, tx, record); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if isConstraintViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete %s: %w", t.Name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		if isConstraintViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to commit delete of %s: %w", t.Name, err)
	}

	record.MarkDeleted()
	return true, nil
}

func (c *Client) selectRecords(ctx context.Context, recordType string, query sq.SelectBuilder) ([]*entities.Record, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", recordType, err)
	}
	defer rows.Close()

	return scanRecords(rows, recordType)
}

// writableColumns returns the schema columns present on the record, in schema order
func writableColumns(t *entities.EntityType, record *entities.Record) []string {
	var cols []string
	for _, col := range t.Columns {
		if _, ok := record.Attributes[col]; ok {
			cols = append(cols, col)
		}
	}
	return cols
}
