package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CameronXie/pos-order-relay/internal/api/rest/handler"
	"github.com/CameronXie/pos-order-relay/internal/api/rest/middleware"
	"github.com/CameronXie/pos-order-relay/internal/metrics"
)

// APIPrefix is the prefix the kitchen app uses. Every route is also served without it.
const APIPrefix = "/api"

type RouterConfig struct {
	Orders       *handler.OrderHandler
	Relay        *handler.RelayHandler
	Auth         *handler.AuthHandler
	Menu         *handler.MenuHandler
	Dashboard    *handler.DashboardHandler
	System       *handler.SystemHandler
	UpstreamAuth middleware.Middleware
	SessionAuth  middleware.Middleware
	Metrics      *metrics.Registry
	Logger       *slog.Logger
	CORSOrigins  []string
}

// NewRouter initializes the HTTP router with routes defined by the given RouterConfig.
func NewRouter(cfg *RouterConfig) http.Handler {
	root := mux.NewRouter()
	root.NotFoundHandler = http.HandlerFunc(notFound)
	root.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	root.Use(
		mux.MiddlewareFunc(middleware.RequestLogger(cfg.Logger)),
		mux.MiddlewareFunc(middleware.Metrics(cfg.Metrics)),
	)

	root.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	registerRoutes(root.PathPrefix(APIPrefix).Subrouter(), cfg)
	registerRoutes(root, cfg)

	return middleware.Chain(root, middleware.CORS(cfg.CORSOrigins))
}

func registerRoutes(r *mux.Router, cfg *RouterConfig) {
	r.HandleFunc("/", cfg.System.Index).Methods(http.MethodGet)
	r.HandleFunc("/health", cfg.System.Health).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/login", cfg.Auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/google", cfg.Auth.GoogleLogin).Methods(http.MethodPost)
	r.Handle("/auth/session", cfg.SessionAuth(http.HandlerFunc(cfg.Auth.Session))).Methods(http.MethodGet)

	// Orders: fixed paths first so they win over /orders/{order_number}
	r.Handle("/orders/cloud-order-receive", cfg.UpstreamAuth(http.HandlerFunc(cfg.Orders.ReceiveCloudOrder))).
		Methods(http.MethodPost)
	r.HandleFunc("/orders/new", cfg.Orders.ListNewOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/list", cfg.Orders.ListFulfillmentOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/restaurant/{id}", cfg.Orders.ListRestaurantOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/detail/{order_number}", cfg.Orders.GetFulfillmentOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/update-status", cfg.Relay.UpdateStatus).Methods(http.MethodPost)
	r.HandleFunc("/orders/dispatch", cfg.Relay.Dispatch).Methods(http.MethodPost)
	r.HandleFunc("/orders/cancel", cfg.Relay.Cancel).Methods(http.MethodPost)
	r.HandleFunc("/orders/{order_number}/status", cfg.Relay.TransitionFulfillment).Methods(http.MethodPatch)
	r.HandleFunc("/orders/{order_number}/prep-time", cfg.Relay.SetPrepTime).Methods(http.MethodPatch)
	r.HandleFunc("/orders/{order_number}", cfg.Orders.GetOrder).Methods(http.MethodGet)

	// Menu
	r.HandleFunc("/menu/items", cfg.Menu.ListItems).Methods(http.MethodGet)
	r.HandleFunc("/menu/categories", cfg.Menu.ListCategories).Methods(http.MethodGet)
	r.HandleFunc("/menu/items/{id:[0-9]+}/availability", cfg.Menu.SetAvailability).Methods(http.MethodPatch)
	r.HandleFunc("/menu/bulk-availability", cfg.Menu.BulkSetAvailability).Methods(http.MethodPost)

	// Dashboard
	r.HandleFunc("/dashboard/stats", cfg.Dashboard.Stats).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/top-dishes", cfg.Dashboard.TopDishes).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/frequent-customers", cfg.Dashboard.FrequentCustomers).Methods(http.MethodGet)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	handler.WriteErrorResponse(w, http.StatusNotFound, handler.CodeNotFound, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	handler.WriteErrorResponse(w, http.StatusMethodNotAllowed, handler.CodeInvalidRequest, "Method not allowed")
}
