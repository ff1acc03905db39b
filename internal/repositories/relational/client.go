// Package relational implements the record, relation and query repositories over database/sql.
// One implementation serves postgres (lib/pq or pgx) and sqlite; the dialect only changes
// the placeholder format.
package relational

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/repositories"
)

var (
	_ repositories.Store           = (*Client)(nil)
	_ repositories.QueryRepository = (*Client)(nil)
)

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Client stores records in one table per type and join rows in the relation's join table
type Client struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	driver string
	schema *entities.Schema
	newID  func() string
}

// New creates a client for an open database.
// driver is the database driver name ("postgres", "pgx" or "sqlite").
func New(db *sql.DB, driver string, schema *entities.Schema) *Client {
	var format sq.PlaceholderFormat = sq.Question
	if isPostgres(driver) {
		format = sq.Dollar
	}
	return &Client{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(format),
		driver: driver,
		schema: schema,
		newID:  uuid.NewString,
	}
}

// Driver returns the strategy driver key ("postgres", "sqlite")
func (c *Client) Driver() string {
	if isPostgres(c.driver) {
		return "postgres"
	}
	return "sqlite"
}

func isPostgres(driver string) bool {
	return driver == "postgres" || driver == "pgx"
}

func (c *Client) entityType(recordType string) (*entities.EntityType, error) {
	t := c.schema.GetType(recordType)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", repositories.ErrUnknownType, recordType)
	}
	return t, nil
}

// selectColumns returns the id and writable columns, qualified by table
func selectColumns(t *entities.EntityType) []string {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Table+".id")
	for _, col := range t.Columns {
		cols = append(cols, t.Table+"."+col)
	}
	return cols
}
