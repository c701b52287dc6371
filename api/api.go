// Package api exposes the settlement layer's read-only and submission
// surface over HTTP: the current/recent roots, pending mint and burn
// ledger entries, the validator-set snapshot history, and UTXO
// transaction submission. Everything that mutates the canonical state
// (VerifyBlock, Initialize, SetValidators) stays an in-process call on
// settlement.Settlement — this package only ever reads storage or
// forwards a transaction to prover.Prover, never signs or settles.
//
// Uses a chi router with a standard cors/logger/recoverer/timeout
// middleware stack and a path-param endpoint convention for per-entry
// lookups.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shielded-rollup/settlement/log"
	"github.com/shielded-rollup/settlement/prover"
	"github.com/shielded-rollup/settlement/settlement"
	"github.com/shielded-rollup/settlement/storage"
)

// Config is the constructor input for New.
type Config struct {
	Host string
	Port int

	Storage    *storage.Storage
	Settlement *settlement.Settlement
	// Prover is optional: when nil, TxEndpoint is not registered, letting
	// a read-only deployment run api without a proving node attached.
	Prover *prover.Prover
}

// API is the HTTP server over the settlement layer's storage and
// settlement state machine.
type API struct {
	router  *chi.Mux
	storage *storage.Storage
	stl     *settlement.Settlement
	pv      *prover.Prover
}

// New builds an API instance and starts serving in the background.
func New(conf *Config) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("api: missing configuration")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("api: missing storage instance")
	}
	if conf.Settlement == nil {
		return nil, fmt.Errorf("api: missing settlement instance")
	}
	a := &API{storage: conf.Storage, stl: conf.Settlement, pv: conf.Prover}
	a.initRouter()

	go func() {
		addr := fmt.Sprintf("%s:%d", conf.Host, conf.Port)
		log.Infow("starting API server", "addr", addr)
		if err := http.ListenAndServe(addr, a.router); err != nil {
			log.Fatalf("api server failed: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router, exposed for in-process testing.
func (a *API) Router() *chi.Mux {
	return a.router
}

func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	a.router.Use(chimw.Logger)
	a.router.Use(chimw.Recoverer)
	a.router.Use(chimw.Throttle(100))
	a.router.Use(chimw.Timeout(30 * time.Second))

	a.registerHandlers()
}

func (a *API) registerHandlers() {
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) { httpWriteOK(w) })
	a.router.Get(RootEndpoint, a.currentRoot)
	a.router.Get(RecentRootsEndpoint, a.recentRoots)
	a.router.Get(MintEndpoint, a.getMint)
	a.router.Get(BurnEndpoint, a.getBurn)
	a.router.Get(ValidatorsEndpoint, a.validators)
	if a.pv != nil {
		a.router.Post(TxEndpoint, a.submitTx)
	}
}
