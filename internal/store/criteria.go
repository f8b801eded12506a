package store

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Criteria narrows a select query.
type Criteria = repository.SelectCriteria

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Visible excludes soft-deleted records.
func Visible() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("hidden = ?", false)
	}
}

func ByID(id uuid.UUID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	}
}

// Equals matches column against value.
func Equals(column string, value any) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident(column), value)
	}
}

func Limit(n int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(n)
	}
}

// Page orders by creation time and skips offset pages of limit records.
func Page(limit, offset int, desc bool) repository.SelectCriteria {
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.OrderExpr("created_at" + dir).OrderExpr("id" + dir)
		if limit > 0 {
			q = q.Limit(limit).Offset(offset * limit)
		}
		return q
	}
}

// Search matches term as a case-insensitive substring of any column. Array
// and object columns are matched against their JSON text.
func Search(term string, columns ...string) repository.SelectCriteria {
	term = strings.ToLower(strings.TrimSpace(term))
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if term == "" || len(columns) == 0 {
			return q
		}
		pattern := "%" + likeEscaper.Replace(term) + "%"
		return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, col := range columns {
				q = q.WhereOr(`LOWER(CAST(? AS TEXT)) LIKE ? ESCAPE '\'`, bun.Ident(col), pattern)
			}
			return q
		})
	}
}
