package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestProductQueryToSQL(t *testing.T) {
	t.Parallel()

	t.Run("no filters uses defaults", func(t *testing.T) {
		t.Parallel()

		q := &ProductQuery{}
		dataSQL, countSQL, args := q.ToSQL()

		assert.Empty(t, args)
		assert.NotContains(t, dataSQL, "WHERE")
		assert.Contains(t, dataSQL, "ORDER BY title ASC")
		assert.Contains(t, dataSQL, "LIMIT 50 OFFSET 0")
		assert.NotContains(t, countSQL, "WHERE")
	})

	t.Run("account filter", func(t *testing.T) {
		t.Parallel()

		q := &ProductQuery{Account: strPtr("LOJA_X")}
		dataSQL, countSQL, args := q.ToSQL()

		assert.Contains(t, dataSQL, "account_nickname = $1")
		assert.Contains(t, countSQL, "account_nickname = $1")
		assert.Equal(t, []any{"LOJA_X"}, args)
	})

	t.Run("search wraps the term in wildcards", func(t *testing.T) {
		t.Parallel()

		q := &ProductQuery{Search: strPtr("fone")}
		dataSQL, _, args := q.ToSQL()

		assert.Contains(t, dataSQL, "title ILIKE $1")
		assert.Equal(t, []any{"%fone%"}, args)
	})

	t.Run("all filters number parameters sequentially", func(t *testing.T) {
		t.Parallel()

		q := &ProductQuery{
			Account: strPtr("LOJA_X"),
			Status:  strPtr("active"),
			Search:  strPtr("teclado"),
		}
		dataSQL, _, args := q.ToSQL()

		assert.Contains(t, dataSQL, "account_nickname = $1")
		assert.Contains(t, dataSQL, "status = $2")
		assert.Contains(t, dataSQL, "title ILIKE $3")
		assert.Equal(t, []any{"LOJA_X", "active", "%teclado%"}, args)
	})

	t.Run("order by whitelist", func(t *testing.T) {
		t.Parallel()

		q := &ProductQuery{OrderBy: "price"}
		dataSQL, _, _ := q.ToSQL()
		assert.Contains(t, dataSQL, "ORDER BY price ASC")

		q = &ProductQuery{OrderBy: "sales"}
		dataSQL, _, _ = q.ToSQL()
		assert.Contains(t, dataSQL, "ORDER BY sales DESC")

		// Unknown columns fall back to the default instead of interpolating.
		q = &ProductQuery{OrderBy: "password_hash; DROP TABLE users"}
		dataSQL, _, _ = q.ToSQL()
		assert.Contains(t, dataSQL, "ORDER BY title ASC")
	})

	t.Run("limit is clamped", func(t *testing.T) {
		t.Parallel()

		q := &ProductQuery{Limit: 100000}
		dataSQL, _, _ := q.ToSQL()
		assert.Contains(t, dataSQL, "LIMIT 500")

		q = &ProductQuery{Limit: -5, Offset: -3}
		dataSQL, _, _ = q.ToSQL()
		assert.Contains(t, dataSQL, "LIMIT 50 OFFSET 0")
	})
}
