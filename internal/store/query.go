package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByPrice = "price"
	orderBySales = "sales"
	orderByViews = "views"
	orderByTitle = "title"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByPrice: "price ASC",
	orderBySales: "sales DESC",
	orderByViews: "views DESC",
	orderByTitle: "title ASC",
}

const defaultOrderBy = "title ASC"

const baseProductsSelect = `SELECT ml_item_id, title, price, stock, status, account_nickname,
	views, sales, COALESCE(category, ''), images, COALESCE(description, '')
FROM products`

const countProductsSelect = "SELECT COUNT(*) FROM products"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a product query.
// It returns two SQL strings (one for the data query, one for the count query)
// and the positional parameters.
func (q *ProductQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.Account != nil {
		conditions = append(conditions, fmt.Sprintf("account_nickname = $%d", paramIdx))
		args = append(args, *q.Account)
		paramIdx++
	}

	if q.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", paramIdx))
		args = append(args, *q.Status)
		paramIdx++
	}

	if q.Search != nil {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", paramIdx))
		args = append(args, "%"+*q.Search+"%")
		paramIdx++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Order by
	orderClause := defaultOrderBy
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			orderClause = col
		}
	}

	// Limit
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseProductsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countProductsSelect + whereClause

	return dataSQL, countSQL, args
}
