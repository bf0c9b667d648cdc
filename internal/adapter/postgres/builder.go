package postgres

import (
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/solarsite/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Builder returns a squirrel statement builder using $N placeholders.
func Builder() squirrel.StatementBuilderType {
	return psql
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchAny builds "(col1 ILIKE $1 OR col2 ILIKE $2 ...)" for a free-text
// term. The term is normalized the same way the in-memory filters do it and
// LIKE metacharacters are escaped. It returns nil for an empty term.
func SearchAny(term string, columns ...string) squirrel.Sqlizer {
	term = domain.NormalizeSearch(term)
	if term == "" || len(columns) == 0 {
		return nil
	}
	pattern := "%" + likeEscaper.Replace(term) + "%"

	or := make(squirrel.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, squirrel.ILike{col: pattern})
	}
	return or
}

// NewestFirst returns the ordering shared by every list query, qualified
// with the table alias when one is given.
func NewestFirst(alias string) []string {
	if alias == "" {
		return []string{"created_at DESC", "id DESC"}
	}
	return []string{alias + ".created_at DESC", alias + ".id DESC"}
}

// Scanner is satisfied by pgx.Row and pgx.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Columns joins column names for RETURNING clauses.
func Columns(cols []string) string {
	return strings.Join(cols, ", ")
}
