// Package server wires the review runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ftcplatform/platform/internal/platform/config"
	"github.com/ftcplatform/platform/internal/platform/id"
	"github.com/ftcplatform/platform/internal/platform/timeouts"
	httpapi "github.com/ftcplatform/platform/internal/services/review/api/http"
	"github.com/ftcplatform/platform/internal/services/review/delivery"
	"github.com/ftcplatform/platform/internal/services/review/domain"
	"github.com/ftcplatform/platform/internal/services/review/render"
	"github.com/ftcplatform/platform/internal/services/review/safety"
	reviewsqlite "github.com/ftcplatform/platform/internal/services/review/storage/sqlite"
	"github.com/redis/go-redis/v9"
)

// Config holds the runtime settings of the review server.
type Config struct {
	DBPath          string        `env:"FTC_REVIEW_DB_PATH"`
	JWTSecret       string        `env:"FTC_REVIEW_JWT_SECRET"`
	JWTIssuer       string        `env:"FTC_REVIEW_JWT_ISSUER"`
	EmailFrom       string        `env:"FTC_REVIEW_EMAIL_FROM" envDefault:"no-reply@ftc.local"`
	EmailLocale     string        `env:"FTC_REVIEW_EMAIL_LOCALE" envDefault:"en-US"`
	EmailLimit      int           `env:"FTC_REVIEW_EMAIL_HOURLY_LIMIT" envDefault:"200"`
	EmailWindow     time.Duration `env:"FTC_REVIEW_EMAIL_WINDOW" envDefault:"1h"`
	EmailPaused     bool          `env:"FTC_REVIEW_EMAIL_PAUSED"`
	RedisURL        string        `env:"FTC_REVIEW_REDIS_URL"`
	RequestTimeout  time.Duration `env:"FTC_REVIEW_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"FTC_REVIEW_SHUTDOWN_TIMEOUT"`
}

// LoadConfig reads Config from the environment and fills defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = filepath.Join("data", "review.db")
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = timeouts.Request
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = timeouts.Shutdown
	}
	if c.EmailWindow <= 0 {
		c.EmailWindow = safety.DefaultWindow
	}
	return c
}

// Server hosts the review HTTP API and storage lifecycle.
type Server struct {
	listener        net.Listener
	httpServer      *http.Server
	store           *reviewsqlite.Store
	redis           *redis.Client
	shutdownTimeout time.Duration
}

// New creates a configured review server listening on the provided port.
func New(port int) (*Server, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(fmt.Sprintf(":%d", port), cfg)
}

// NewWithConfig creates a review server for the provided address and config.
func NewWithConfig(addr string, cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	verifier, err := httpapi.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("configure token verifier: %w", err)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	store, err := openReviewStore(cfg.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	var counter safety.Counter = safety.NewStoreCounter(store)
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisClient, err = safety.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		counter = safety.NewRedisCounter(redisClient, safety.DefaultRedisKey, cfg.EmailWindow)
	}
	checker := safety.NewChecker(safety.Policy{
		Limit:  cfg.EmailLimit,
		Window: cfg.EmailWindow,
		Paused: cfg.EmailPaused,
	}, counter, time.Now)

	service := domain.NewService(newDomainStoreAdapter(store), time.Now, id.NewID,
		domain.WithRenderer(render.New()),
		domain.WithSafetyChecker(checker),
		domain.WithSender(delivery.NewLogSender(cfg.EmailFrom, nil)),
		domain.WithEmailLocale(cfg.EmailLocale),
	)
	handler, err := httpapi.NewHandler(httpapi.Config{
		Service:        service,
		Verifier:       verifier,
		Checks:         domain.NewCheckCache(),
		Pauser:         checker,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		closeRedis(redisClient)
		return nil, err
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler.Routes(),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:           store,
		redis:           redisClient,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a review server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("review server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

// Close releases review server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	closeRedis(s.redis)
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close review store: %v", err)
		}
	}
}

func closeRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Printf("close redis: %v", err)
	}
}

func openReviewStore(path string) (*reviewsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := reviewsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open review sqlite store: %w", err)
	}
	return store, nil
}
