// package server serves the catalog REST API
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// Handler owns a set of routes and registers them on a group.
type Handler interface {
	Register(api *gin.RouterGroup)
}

// Options configures [NewRouter].
//
// WriteRate is in requests per second across all mutating routes; zero
// disables throttling. AdminToken, when set, guards the same routes.
type Options struct {
	Tracks       TrackStore
	Logger       *log.Logger
	AdminToken   string
	MaxBodyBytes int64
	WriteRate    float64
	WriteBurst   int
	Debug        bool
}

// OptionsFromConfig maps the [server] config section onto router options.
func OptionsFromConfig(cfg shared.ServerConfig, tracks TrackStore, logger *log.Logger) Options {
	return Options{
		Tracks:       tracks,
		Logger:       logger,
		AdminToken:   cfg.AdminToken,
		MaxBodyBytes: cfg.MaxBodyBytes(),
		WriteRate:    cfg.WriteRate,
		WriteBurst:   cfg.WriteBurst,
		Debug:        cfg.Debug,
	}
}

// NewRouter builds the gin engine with middleware and every catalog route.
func NewRouter(opts Options, extra ...Handler) *gin.Engine {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = logger.With("component", "server")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS())
	r.Use(RequestID())
	r.Use(Logging(logger))
	r.Use(BodyLimit(opts.MaxBodyBytes))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, models.MsgRootBanner)
	})

	guard := []gin.HandlerFunc{RequireToken(opts.AdminToken)}
	if opts.WriteRate > 0 {
		burst := max(opts.WriteBurst, 1)
		guard = append(guard, RateLimit(rate.NewLimiter(rate.Limit(opts.WriteRate), burst)))
	}

	api := r.Group("/api")
	handlers := []Handler{}
	if opts.Tracks != nil {
		handlers = append(handlers, NewTrackHandler(opts.Tracks, logger, guard...))
	}
	handlers = append(handlers, extra...)
	for _, h := range handlers {
		h.Register(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	})

	return r
}

// Server runs an [http.Handler] until its context ends.
type Server struct {
	srv    *http.Server
	logger *log.Logger
}

// New wraps handler in an [http.Server] configured from cfg.
func New(cfg shared.ServerConfig, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	timeout := cfg.Timeout()
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       timeout,
			WriteTimeout:      timeout,
			IdleTimeout:       2 * timeout,
		},
		logger: logger.With("component", "server"),
	}
}

// Run listens on the configured address.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("%w: listen %s: %v", shared.ErrServiceUnavailable, s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("catalog API listening", "addr", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
