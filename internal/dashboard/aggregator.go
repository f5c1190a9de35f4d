package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

const DefaultLimit = 5

// Source is the relational reporting data the aggregator reads.
type Source interface {
	StatusTotals(ctx context.Context, restaurantID int64, from, to time.Time) ([]domain.StatusTotal, error)
	AveragePrepTime(ctx context.Context, restaurantID int64, from, to time.Time) (float64, bool, error)
	ListReportRows(ctx context.Context, restaurantID int64, from, to time.Time) ([]domain.FulfillmentRecord, error)
}

// PeriodView is the reporting window as echoed to clients.
type PeriodView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Stats summarises order counts and revenue over a period.
type Stats struct {
	TotalOrders        int        `json:"totalOrders"`
	TotalRevenue       float64    `json:"totalRevenue"`
	PendingOrders      int        `json:"pendingOrders"`
	ApprovedOrders     int        `json:"approvedOrders"`
	PreparingOrders    int        `json:"preparingOrders"`
	ReadyOrders        int        `json:"readyOrders"`
	DispatchedOrders   int        `json:"dispatchedOrders"`
	CompletedOrders    int        `json:"completedOrders"`
	CancelledOrders    int        `json:"cancelledOrders"`
	AvgPrepTimeMinutes *float64   `json:"avgPrepTimeMinutes"`
	Period             PeriodView `json:"period"`
}

// DishStat is the sales of one dish over a period.
type DishStat struct {
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// CustomerStat is the activity of one customer over a period.
type CustomerStat struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Orders     int     `json:"orders"`
	TotalSpent float64 `json:"totalSpent"`
}

// productLine is one element of a product_details blob.
type productLine struct {
	DishName  string              `json:"dish_name"`
	DishImage string              `json:"dish_image"`
	Quantity  decimal.NullDecimal `json:"quantity"`
	UnitPrice decimal.NullDecimal `json:"unit_price"`
}

// Aggregator computes dashboard figures for one restaurant.
type Aggregator struct {
	source Source
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an Aggregator whose default periods are computed in loc.
func NewAggregator(source Source, loc *time.Location, logger *slog.Logger) *Aggregator {
	if loc == nil {
		loc = time.Local
	}

	return &Aggregator{
		source: source,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// StatsPeriod resolves the window used by Stats and TopDishes: today by default.
func (a *Aggregator) StatsPeriod(start, end string) (Period, error) {
	return ParsePeriod(start, end, a.now(), a.loc, 0)
}

// CustomersPeriod resolves the window used by FrequentCustomers: the trailing 30
// days by default.
func (a *Aggregator) CustomersPeriod(start, end string) (Period, error) {
	return ParsePeriod(start, end, a.now(), a.loc, frequentCustomersWindow)
}

// Stats counts orders per fulfillment status and sums revenue over every status.
func (a *Aggregator) Stats(ctx context.Context, restaurantID int64, p Period) (*Stats, error) {
	var (
		totals  []domain.StatusTotal
		avgPrep float64
		hasPrep bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = a.source.StatusTotals(gctx, restaurantID, p.Start, p.End)
		return err
	})
	g.Go(func() error {
		var err error
		avgPrep, hasPrep, err = a.source.AveragePrepTime(gctx, restaurantID, p.Start, p.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load stats for restaurant %d: %w", restaurantID, err)
	}

	stats := &Stats{Period: periodView(p)}
	revenue := decimal.Zero
	for _, st := range totals {
		stats.TotalOrders += st.Count
		revenue = revenue.Add(st.Amount)

		switch st.Status {
		case domain.FulfillmentPending:
			stats.PendingOrders += st.Count
		case domain.FulfillmentApproved:
			stats.ApprovedOrders += st.Count
		case domain.FulfillmentPreparing:
			stats.PreparingOrders += st.Count
		case domain.FulfillmentReady:
			stats.ReadyOrders += st.Count
		case domain.FulfillmentDispatched:
			stats.DispatchedOrders += st.Count
		case domain.FulfillmentCompleted:
			stats.CompletedOrders += st.Count
		case domain.FulfillmentCancelled:
			stats.CancelledOrders += st.Count
		}
	}
	stats.TotalRevenue = revenue.Round(2).InexactFloat64()

	if hasPrep {
		v := decimal.NewFromFloat(avgPrep).Round(1).InexactFloat64()
		stats.AvgPrepTimeMinutes = &v
	}

	return stats, nil
}

// TopDishes ranks dishes by quantity sold, then revenue, then name. Cancelled and
// refunded orders are excluded; unreadable product_details are skipped.
func (a *Aggregator) TopDishes(ctx context.Context, restaurantID int64, p Period, limit int) ([]DishStat, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := a.source.ListReportRows(ctx, restaurantID, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("load report rows for restaurant %d: %w", restaurantID, err)
	}

	type acc struct {
		image    string
		quantity int64
		revenue  decimal.Decimal
	}
	byName := make(map[string]*acc)

	for i := range rows {
		row := &rows[i]
		if domain.ExcludedFromReports(row.FulfillmentStatus) || row.ProductDetails == "" {
			continue
		}

		var lines []productLine
		if err := json.Unmarshal([]byte(row.ProductDetails), &lines); err != nil {
			a.logger.Warn("Skipping unreadable product details", "order_number", row.OrderNumber, "error", err)
			continue
		}

		for _, line := range lines {
			name := line.DishName
			if name == "" {
				name = "Unknown"
			}

			qty := decimal.NewFromInt(1)
			if line.Quantity.Valid {
				qty = line.Quantity.Decimal.Truncate(0)
			}
			price := decimal.Zero
			if line.UnitPrice.Valid {
				price = line.UnitPrice.Decimal
			}

			entry, ok := byName[name]
			if !ok {
				entry = &acc{image: line.DishImage, revenue: decimal.Zero}
				byName[name] = entry
			}
			entry.quantity += qty.IntPart()
			entry.revenue = entry.revenue.Add(price.Mul(qty))
		}
	}

	type ranked struct {
		stat    DishStat
		revenue decimal.Decimal
	}
	list := make([]ranked, 0, len(byName))
	for name, e := range byName {
		list = append(list, ranked{
			stat: DishStat{
				Name:    name,
				Image:   e.image,
				Orders:  e.quantity,
				Revenue: e.revenue.Round(2).InexactFloat64(),
			},
			revenue: e.revenue,
		})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].stat.Orders != list[j].stat.Orders {
			return list[i].stat.Orders > list[j].stat.Orders
		}
		if c := list[i].revenue.Cmp(list[j].revenue); c != 0 {
			return c > 0
		}
		return list[i].stat.Name < list[j].stat.Name
	})

	dishes := make([]DishStat, 0, limit)
	for i := 0; i < len(list) && i < limit; i++ {
		dishes = append(dishes, list[i].stat)
	}

	return dishes, nil
}

// FrequentCustomers ranks customers by order count then spend. Cancelled and
// refunded orders and rows without a customer name are excluded.
func (a *Aggregator) FrequentCustomers(ctx context.Context, restaurantID int64, p Period, limit int) ([]CustomerStat, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := a.source.ListReportRows(ctx, restaurantID, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("load report rows for restaurant %d: %w", restaurantID, err)
	}

	type acc struct {
		contact domain.CustomerContact
		orders  int
		spent   decimal.Decimal
	}
	byCustomer := make(map[[3]string]*acc)

	for i := range rows {
		row := &rows[i]
		if domain.ExcludedFromReports(row.FulfillmentStatus) || row.Customer.Name == "" {
			continue
		}

		key := [3]string{row.Customer.Name, row.Customer.Email, row.Customer.Phone}
		entry, ok := byCustomer[key]
		if !ok {
			entry = &acc{contact: row.Customer, spent: decimal.Zero}
			byCustomer[key] = entry
		}
		entry.orders++
		entry.spent = entry.spent.Add(row.TotalAmount)
	}

	list := make([]*acc, 0, len(byCustomer))
	for _, e := range byCustomer {
		list = append(list, e)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].orders != list[j].orders {
			return list[i].orders > list[j].orders
		}
		if c := list[i].spent.Cmp(list[j].spent); c != 0 {
			return c > 0
		}
		return list[i].contact.Name < list[j].contact.Name
	})

	customers := make([]CustomerStat, 0, limit)
	for i := 0; i < len(list) && i < limit; i++ {
		customers = append(customers, CustomerStat{
			Name:       list[i].contact.Name,
			Email:      list[i].contact.Email,
			Phone:      list[i].contact.Phone,
			Orders:     list[i].orders,
			TotalSpent: list[i].spent.Round(2).InexactFloat64(),
		})
	}

	return customers, nil
}

func periodView(p Period) PeriodView {
	return PeriodView{
		Start: p.Start.Format(DateTimeLayout),
		End:   p.End.Format(DateTimeLayout),
	}
}
