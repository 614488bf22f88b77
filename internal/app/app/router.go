package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/alice"

	"artgen/internal/app/handler"
	mw "artgen/internal/app/middleware"
)

func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(a.logger))

	uh := handler.NewUserHandler(a.users, a.session)
	ph := handler.NewPaymentHandler(a.payments)
	ih := handler.NewImageHandler(a.generator)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/register", uh.Register)
	r.Post("/login", uh.Login)
	r.Get("/plans", uh.Plans)

	protected := alice.New(mw.Auth(a.session))

	r.Method(http.MethodGet, "/credits", protected.ThenFunc(uh.Credits))
	r.Method(http.MethodPost, "/pay-razor", protected.ThenFunc(ph.Pay))
	r.Method(http.MethodPost, "/verify-razor", protected.ThenFunc(ph.Verify))

	// Generation burns provider quota, so it alone is rate limited.
	generateChain := protected.Append(
		mw.RateLimit(a.redis, a.config.Provider.GenerateRateLimit, time.Minute),
	)
	r.Method(http.MethodPost, "/generate-image", generateChain.ThenFunc(ih.Generate))

	return r
}
