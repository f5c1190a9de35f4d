package repository

import (
	"sort"
	"strings"
)

// Relational table names.
const (
	AccountsTable    = "restaurant_accounts"
	DishesTable      = "dishes"
	FulfillmentTable = "order_management"
)

// RelationalSchema is the column contract the relational adapters rely on.
var RelationalSchema = map[string][]string{
	AccountsTable: {
		"id", "username", "email", "password_hash", "is_active", "approval_status",
		"restaurant_id", "app_restaurant_uid", "name", "phone", "role",
	},
	DishesTable: {
		"dish_id", "restaurant_id", "name", "short_description", "detailed_description",
		"primary_image", "selling_price", "discount_type", "discount_value", "food_type",
		"cuisine_type", "spice_level", "availability_status", "is_popular", "is_customizable",
		"tier_1", "tier_2", "tags", "customer_rating", "number_of_reviews", "mark_as",
		"is_active", "is_deleted", "sort_order", "created_at", "updated_at",
	},
	FulfillmentTable: {
		"order_id", "restaurant_id", "order_number", "customer", "customer_email",
		"customer_phone", "customer_address", "total_amount", "payment_status",
		"payment_method", "fulfillment_status", "delivery_method", "order_date",
		"created_at", "updated_at", "item_count", "product_details", "kitchen_notes",
		"approved_at", "approved_by", "ready_at", "ready_by", "dispatched_at",
		"dispatched_by", "completed_at", "cancelled_at", "cancel_reason",
		"prep_time_minutes", "delivery_date",
	},
}

// SchemaTables returns the contract table names in a stable order.
func SchemaTables() []string {
	tables := make([]string, 0, len(RelationalSchema))
	for table := range RelationalSchema {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	return tables
}

// MissingColumns compares the discovered columns (keyed "table.column") with the
// contract and returns what is absent, sorted.
func MissingColumns(found map[string]bool) []string {
	var missing []string
	for _, table := range SchemaTables() {
		for _, column := range RelationalSchema[table] {
			if !found[table+"."+column] {
				missing = append(missing, table+"."+column)
			}
		}
	}

	return missing
}

// LikePattern builds a substring pattern for LIKE queries, escaping wildcards in
// the user supplied term with a backslash.
func LikePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}
