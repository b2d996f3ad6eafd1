// Package health serves the agent's liveness endpoint: a single GET / that
// answers "OK" for as long as the process is up, plus the Prometheus scrape
// endpoint mounted alongside it.
package health

import (
	"net/http"
	"time"

	"github.com/scroll-tech/proving-sdk/pkg/metrics"
)

// Server is the health-check HTTP server bound on a configured address. It
// has no notion of readiness beyond "the process accepted the connection":
// the worker pool's own crash-recovery path is what makes a bare liveness
// check sufficient here.
type Server struct {
	addr   string
	server *http.Server
}

// New builds a Server listening on addr (e.g. "0.0.0.0:80").
func New(addr string) *Server {
	mux := http.NewServeMux()
	s := &Server{addr: addr}
	mux.HandleFunc("/", s.rootHandler)
	mux.Handle("/metrics", metrics.Handler())

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops or errors. It is meant to be
// run as one member of the same task set as the worker pool: whichever
// finishes first ends the process.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
