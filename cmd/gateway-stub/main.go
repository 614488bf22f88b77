// gateway-stub is a local stand-in for the payment gateway: it accepts
// order creation and reports every fetched order as paid, so the full
// purchase/reconcile loop can be exercised without real credentials.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"artgen/internal/app/logger"
	mw "artgen/internal/app/middleware"
	"artgen/pkg/razorpay"
)

func main() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		osCall := <-stop
		log.Printf("System call: %+v", osCall)
		cancel()
	}()

	l := logger.New(true, true)

	if err := runServer(ctx, "127.0.0.1:8090", l); err != nil {
		l.Fatal().Err(err).Msg("Server run failed")
	}
}

func runServer(ctx context.Context, listenAddr string, l logger.Logger) (err error) {
	s := &stub{orders: make(map[string]*razorpay.Order)}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(l))
	r.Post("/orders", s.CreateOrder)
	r.Get("/orders/{order}", s.FetchOrder)

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("Listening on %s", listenAddr)
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("")
		}
	}()

	log.Printf("Gateway stub started")
	<-ctx.Done()
	log.Printf("Gateway stub stopped")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		cancel()
	}()

	if err = srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return
}

type stub struct {
	mu     sync.Mutex
	orders map[string]*razorpay.Order
}

func (s *stub) CreateOrder(w http.ResponseWriter, r *http.Request) {
	in := &razorpay.CreateOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order := &razorpay.Order{
		ID:       fmt.Sprintf("order_stub%012d", rand.Int63n(1e12)),
		Amount:   in.Amount,
		Currency: in.Currency,
		Receipt:  in.Receipt,
		Status:   razorpay.OrderStatusCreated,
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()

	rawJSON, _ := json.Marshal(order)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(rawJSON)
}

func (s *stub) FetchOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "order")

	s.mu.Lock()
	order, ok := s.orders[id]
	if ok {
		// Every order settles on first sight, which is exactly what the
		// reconcile happy path needs.
		order.Status = razorpay.OrderStatusPaid
	}
	s.mu.Unlock()

	if !ok {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	rawJSON, _ := json.Marshal(order)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(rawJSON)
}
