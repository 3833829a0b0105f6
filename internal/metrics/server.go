package metrics

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ekmektech/tcpdumpdashboard/internal/report"
)

// SnapshotSource returns the most recent snapshot, if one was rendered.
type SnapshotSource interface {
	Get() (report.Snapshot, bool)
}

// Server serves /metrics, /healthz and /snapshot.
type Server struct {
	srv *http.Server
}

// NewRouter builds the status routes.
func NewRouter(g prometheus.Gatherer, latest SnapshotSource) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		snap, ok := latest.Get()
		if !ok {
			http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(snap.Text))
	}).Methods(http.MethodGet)
	return r
}

// NewServer returns an unstarted server for addr.
func NewServer(addr string, g prometheus.Gatherer, latest SnapshotSource) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(g, latest),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	log.Printf("metrics: listening on %s", ln.Addr())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics: server exited: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
