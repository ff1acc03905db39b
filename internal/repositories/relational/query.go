package relational

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/asakaida/datastore/internal/entities"
)

// Query returns a base select of every column of the record type's table
func (c *Client) Query(recordType string) (sq.SelectBuilder, error) {
	t, err := c.entityType(recordType)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	return c.sb.Select(selectColumns(t)...).From(t.Table), nil
}

// Select runs the query and maps rows to records of the given type
func (c *Client) Select(ctx context.Context, recordType string, query sq.SelectBuilder) ([]*entities.Record, error) {
	records, err := c.selectRecords(ctx, recordType, query)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*entities.Record{}
	}
	return records, nil
}

// Count returns the number of rows the query would return, ignoring limit and offset
func (c *Client) Count(ctx context.Context, query sq.SelectBuilder) (int, error) {
	countQuery := c.sb.
		Select("COUNT(*)").
		FromSelect(query.RemoveLimit().RemoveOffset(), "counted")

	sqlStr, args, err := countQuery.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to execute count query: %w", err)
	}
	return total, nil
}
