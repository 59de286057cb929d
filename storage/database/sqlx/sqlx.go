// Package sqlxrepos implements the repositories on PostgreSQL with sqlx and squirrel.
package sqlxrepos

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NewDB wraps an opened postgres connection pool.
func NewDB(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

// uniqueConstraint returns the name of the violated unique constraint, or "" if err is not such a violation.
func uniqueConstraint(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

// orderBy renders the orderings for squirrel, or the fallback when there are none.
func orderBy(orderings []core.DBOrdering, fallback string) []string {
	if len(orderings) == 0 {
		return []string{fallback}
	}
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		clauses = append(clauses, ord.String())
	}
	return clauses
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains builds an ILIKE pattern matching s anywhere.
func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// checkAffected turns an update that touched no row into notFound.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
