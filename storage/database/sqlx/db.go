package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pqErrorCode(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code)
	}
	return ""
}

// store is embedded by every repository. ext is either the *sqlx.DB or the current *sqlx.Tx.
type store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func newStore(db *sqlx.DB) store {
	return store{db: db, ext: db}
}

func (s store) inTx() bool { return s.db == nil }

// withinTx runs fn in a transaction; it is rolled back if fn returns an error.
func (s store) withinTx(ctx context.Context, fn func(s store) error) error {
	if s.inTx() {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(store{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back transaction: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// orderBy returns an ORDER BY clause from the allowed orderings, falling back to `def`.
func orderBy(orderings []core.DBOrdering, def string, allowed ...string) string {
	orderings = core.FilterOrderings(orderings, allowed...)
	if len(orderings) == 0 {
		return " ORDER BY " + def
	}
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		clauses = append(clauses, ord.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", ") + ", id ASC"
}

// insert runs a named INSERT ... RETURNING id and returns the new id.
func (s store) insert(ctx context.Context, query string, arg interface{}) (int, error) {
	rows, err := sqlx.NamedQueryContext(ctx, s.ext, query, arg)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var id int
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, rows.Err()
}

// update runs a named statement and returns notFound if no row was affected.
func (s store) update(ctx context.Context, query string, arg interface{}, notFound error) error {
	res, err := sqlx.NamedExecContext(ctx, s.ext, query, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (s store) delete(ctx context.Context, query string, id int, notFound error) error {
	res, err := s.ext.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
