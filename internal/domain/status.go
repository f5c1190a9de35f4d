package domain

// Intake-side statuses tracked in the document store.
const (
	InternalStatusNew        = "new"
	InternalStatusApproved   = "approved"
	InternalStatusReady      = "ready"
	InternalStatusDispatched = "dispatched"
	InternalStatusCancelled  = "cancelled"
)

// Fulfillment statuses of the relational reporting table.
const (
	FulfillmentPending    = "pending"
	FulfillmentApproved   = "approved"
	FulfillmentPreparing  = "preparing"
	FulfillmentReady      = "ready"
	FulfillmentDispatched = "dispatched"
	FulfillmentCompleted  = "completed"
	FulfillmentCancelled  = "cancelled"
	FulfillmentRefunded   = "refunded"
)

// kitchenStatusAliases maps the kitchen app vocabulary onto fulfillment statuses.
var kitchenStatusAliases = map[string]string{
	"accepted": FulfillmentApproved,
}

// NormalizeFulfillmentStatus translates a status coming from the kitchen app into the
// value stored in the reporting table. Unknown values are returned unchanged.
func NormalizeFulfillmentStatus(status string) string {
	if s, ok := kitchenStatusAliases[status]; ok {
		return s
	}

	return status
}

// ExcludedFromReports reports whether orders in the given status are left out of
// dish and customer breakdowns.
func ExcludedFromReports(status string) bool {
	return status == FulfillmentCancelled || status == FulfillmentRefunded
}
