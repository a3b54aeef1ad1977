package memory

import "github.com/stockroomhq/stockroom-backend/internal/storage"

// Fixtures returns the seed data loaded into the mock backend at startup.
// Numbers are float64 to match records that round-trip through JSON.
func Fixtures() map[string][]storage.Record {
	return map[string][]storage.Record{
		storage.CollectionProducts: {
			{"name": "Cordless Drill", "description": "18V two-speed drill", "price": 89.99, "category": "Tools", "stock": float64(24)},
			{"name": "Claw Hammer", "description": "16oz fiberglass handle", "price": 12.50, "category": "Tools", "stock": float64(120)},
			{"name": "Interior Paint", "description": "Matte white, 1 gallon", "price": 32.00, "category": "Paint", "stock": float64(48)},
			{"name": "Work Gloves", "description": "Leather palm, large", "price": 7.25, "category": "Safety", "stock": float64(300)},
		},
		storage.CollectionCustomers: {
			{"name": "Harbor Hardware", "email": "orders@harborhw.example", "phone": "555-0101", "address": "12 Quay St", "created_at": "2025-11-02T09:15:00Z"},
			{"name": "Meadow Builds", "email": "purchasing@meadow.example", "phone": "555-0102", "address": "88 Field Rd", "created_at": "2026-01-18T14:40:00Z"},
		},
		storage.CollectionWarehouses: {
			{"name": "North Depot", "location": "Gate 4, Northern Industrial Park", "created_at": "2025-09-01T08:00:00Z"},
			{"name": "Dockside", "location": "Pier 11", "created_at": "2025-10-12T08:00:00Z"},
		},
		storage.CollectionOrders:     {},
		storage.CollectionOrderItems: {},
		storage.CollectionPayments:   {},
		storage.CollectionExpenses:   {},
	}
}
