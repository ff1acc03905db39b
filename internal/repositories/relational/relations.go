package relational

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/asakaida/datastore/internal/entities"
)

// Related retrieves the records currently related to parent through rel
func (c *Client) Related(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor) ([]*entities.Record, error) {
	switch rel.Kind {
	case entities.SingularOwning:
		id := parent.GetString(rel.ForeignKey)
		targetType := rel.TargetType(parent)
		if id == "" || targetType == "" {
			return nil, nil
		}
		r, err := c.Find(ctx, targetType, id)
		if err != nil || r == nil {
			return nil, err
		}
		return []*entities.Record{r}, nil

	case entities.SingularOwned, entities.PluralOwned:
		t, err := c.entityType(rel.RelatedType)
		if err != nil {
			return nil, err
		}
		where := sq.Eq{t.Table + "." + rel.ForeignKey: parent.ID}
		if rel.MorphType != "" {
			where[t.Table+"."+rel.MorphType] = parent.Type
		}
		query := c.sb.
			Select(selectColumns(t)...).
			From(t.Table).
			Where(where).
			OrderBy(t.Table + ".id")
		return c.selectRecords(ctx, rel.RelatedType, query)

	case entities.PluralJoin:
		t, err := c.entityType(rel.RelatedType)
		if err != nil {
			return nil, err
		}
		query := c.sb.
			Select(selectColumns(t)...).
			From(t.Table).
			Join(fmt.Sprintf("%s ON %s.%s = %s.id", rel.JoinTable, rel.JoinTable, rel.JoinRelatedKey, t.Table)).
			Where(pivotOwner(parent, rel)).
			OrderBy(t.Table + ".id")
		return c.selectRecords(ctx, rel.RelatedType, query)
	}

	return nil, fmt.Errorf("unsupported relation kind: %s", rel.Kind)
}

// AttachPivots inserts join rows for the given related identities, ignoring existing rows
func (c *Client) AttachPivots(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor, ids []entities.Identity) (bool, error) {
	if rel.Kind != entities.PluralJoin {
		return false, fmt.Errorf("relation %s is not a join relation", rel.Name)
	}
	if len(ids) == 0 {
		return true, nil
	}

	cols := []string{rel.JoinParentKey, rel.JoinRelatedKey}
	if rel.JoinMorphType != "" {
		cols = append(cols, rel.JoinMorphType)
	}

	query := c.sb.Insert(rel.JoinTable).Columns(cols...)
	for _, id := range ids {
		if rel.JoinMorphType != "" {
			query = query.Values(parent.ID, id.ID, parent.Type)
		} else {
			query = query.Values(parent.ID, id.ID)
		}
	}
	query = query.Suffix("ON CONFLICT DO NOTHING")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build pivot insert: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if isConstraintViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert into %s: %w", rel.JoinTable, err)
	}
	return true, nil
}

// DetachPivots removes join rows for the given related identities
func (c *Client) DetachPivots(ctx context.Context, parent *entities.Record, rel *entities.RelationDescriptor, ids []entities.Identity) (bool, error) {
	if rel.Kind != entities.PluralJoin {
		return false, fmt.Errorf("relation %s is not a join relation", rel.Name)
	}
	if len(ids) == 0 {
		return true, nil
	}

	relatedIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		relatedIDs = append(relatedIDs, id.ID)
	}

	query := c.sb.
		Delete(rel.JoinTable).
		Where(pivotOwner(parent, rel)).
		Where(sq.Eq{rel.JoinTable + "." + rel.JoinRelatedKey: relatedIDs})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build pivot delete: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if isConstraintViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete from %s: %w", rel.JoinTable, err)
	}
	return true, nil
}

// deletePivotsFor removes join rows on either side of a record about to be deleted.
// Polymorphic join tables cannot cascade on the morph side, so this runs for every driver.
func (c *Client) deletePivotsFor(ctx context.Context, db execer, record *entities.Record) error {
	for _, t := range c.schema.Types {
		for _, rel := range t.Relations {
			if rel.Kind != entities.PluralJoin {
				continue
			}

			var where sq.Sqlizer
			switch {
			case t.Name == record.Type:
				where = pivotOwner(record, rel)
			case rel.RelatedType == record.Type:
				where = sq.Eq{rel.JoinTable + "." + rel.JoinRelatedKey: record.ID}
			default:
				continue
			}

			sqlStr, args, err := c.sb.Delete(rel.JoinTable).Where(where).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build pivot delete: %w", err)
			}
			if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", rel.JoinTable, err)
			}
		}
	}
	return nil
}

func pivotOwner(parent *entities.Record, rel *entities.RelationDescriptor) sq.Eq {
	where := sq.Eq{rel.JoinTable + "." + rel.JoinParentKey: parent.ID}
	if rel.JoinMorphType != "" {
		where[rel.JoinTable+"."+rel.JoinMorphType] = parent.Type
	}
	return where
}
