package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nurlan/debtnet/internal/auth"
	"github.com/nurlan/debtnet/internal/middleware"
	"github.com/nurlan/debtnet/internal/service"
	"github.com/nurlan/debtnet/internal/storage"
)

// Services bundles the application services the router exposes.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Groups        *service.GroupService
	Invites       *service.InviteService
	Merges        *service.MergeService
	Debts         *service.DebtService
	Transactions  *service.TransactionService
	Balances      *service.BalanceService
	Ratings       *service.RatingService
	Optimizations *service.OptimizationService
	Notifications *service.NotificationService
}

// NewRouter mounts every API route under /api/v1 plus the health and
// metrics endpoints.
func NewRouter(svcs Services, store storage.Store, jwtManager *auth.JWTManager) http.Handler {
	h := &Handlers{
		auth:          svcs.Auth,
		users:         svcs.Users,
		groups:        svcs.Groups,
		invites:       svcs.Invites,
		merges:        svcs.Merges,
		debts:         svcs.Debts,
		transactions:  svcs.Transactions,
		balances:      svcs.Balances,
		ratings:       svcs.Ratings,
		optimizations: svcs.Optimizations,
		notifications: svcs.Notifications,
		store:         store,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/confirm", h.ConfirmEmail)
			r.Post("/resend", h.ResendCode)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Get("/me", h.Me)
				r.Put("/me", h.UpdateMe)
				r.Delete("/me", h.DeleteMe)
			})

			r.Get("/currencies", h.ListCurrencies)
			r.Get("/balance", h.GetBalance)
			r.Get("/rating", h.GetRating)

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", h.CreateGroup)
				r.Get("/", h.ListGroups)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetGroup)
					r.Put("/", h.UpdateGroup)
					r.Delete("/", h.DeleteGroup)
					r.Post("/invites", h.CreateInvite)
					r.Get("/ratings", h.GetGroupRatings)
					r.Post("/optimizations", h.CreateOptimization)
				})
			})

			r.Route("/invites", func(r chi.Router) {
				r.Get("/", h.ListInvites)
				r.Post("/{id}/accept", h.AcceptInvite)
				r.Post("/{id}/decline", h.DeclineInvite)
			})

			r.Route("/merges", func(r chi.Router) {
				r.Post("/", h.CreateMerge)
				r.Get("/", h.ListMerges)
				r.Post("/approvals/{id}/approve", h.ApproveMerge)
				r.Post("/approvals/{id}/decline", h.DeclineMerge)
			})

			r.Route("/optimizations", func(r chi.Router) {
				r.Get("/", h.ListOptimizations)
				r.Post("/{id}/run", h.RunOptimization)
				r.Post("/approvals/{id}/approve", h.ApproveOptimization)
				r.Post("/approvals/{id}/decline", h.DeclineOptimization)
			})

			r.Route("/debts", func(r chi.Router) {
				r.Post("/", h.ProposeDebt)
				r.Get("/", h.ListDebts)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetDebt)
					r.Put("/", h.UpdateDebt)
					r.Delete("/", h.DeleteDebt)
					r.Post("/accept", h.AcceptDebt)
					r.Post("/transactions", h.CreateTransaction)
				})
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.ListTransactions)
				r.Post("/{id}/accept", h.AcceptTransaction)
				r.Delete("/{id}", h.DeleteTransaction)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Post("/{id}/read", h.ReadNotification)
				r.Delete("/{id}", h.DeleteNotification)
			})
		})
	})

	return r
}
