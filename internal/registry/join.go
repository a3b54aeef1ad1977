package registry

import (
	"context"
	"strings"

	"github.com/stockroomhq/stockroom-backend/internal/storage"
)

// orderJoinSQL pulls the order row with its payment and customer in one
// round trip. Aliases carry a table prefix so the flat row can be split back
// into per-collection records.
const orderJoinSQL = `
SELECT
  o.id AS o__id, o.customer_id AS o__customer_id, o.status AS o__status,
  o.total_amount AS o__total_amount,
  p.id AS p__id, p.order_id AS p__order_id, p.amount AS p__amount,
  p.method AS p__method, p.status AS p__status, p.card_details AS p__card_details,
  c.id AS c__id, c.name AS c__name, c.email AS c__email,
  c.phone AS c__phone, c.address AS c__address, c.created_at AS c__created_at
FROM orders o
LEFT JOIN payments p ON p.order_id = o.id
LEFT JOIN customers c ON c.id = o.customer_id
WHERE o.id = ?
LIMIT 1`

func (r *Registry) joinedOrder(ctx context.Context, orderID string) (*OrderDetails, error) {
	var rows []map[string]any
	if err := r.sqlDB.WithContext(ctx).Raw(orderJoinSQL, orderID).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	split := splitJoinedRow(rows[0])

	items, err := r.cols[storage.CollectionOrderItems].Find(ctx, storage.Query{"order_id": orderID})
	if err != nil {
		return nil, err
	}

	return &OrderDetails{
		Order:    split["o"],
		Items:    items,
		Payment:  split["p"],
		Customer: split["c"],
	}, nil
}

// splitJoinedRow regroups prefixed columns into per-collection records. A
// group whose id column is NULL collapses to nil (unmatched LEFT JOIN side).
func splitJoinedRow(row map[string]any) map[string]storage.Record {
	groups := map[string]storage.Record{}
	for key, val := range row {
		prefix, field, ok := strings.Cut(key, "__")
		if !ok {
			continue
		}
		if b, isBytes := val.([]byte); isBytes {
			val = string(b)
		}
		if groups[prefix] == nil {
			groups[prefix] = storage.Record{}
		}
		groups[prefix][field] = val
	}
	for prefix, rec := range groups {
		if rec[storage.IDField] == nil {
			groups[prefix] = nil
		}
	}
	return groups
}
