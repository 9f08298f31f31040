package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"fyf-go/internal/api"
	"fyf-go/internal/cache"
	"fyf-go/internal/config"
	"fyf-go/internal/fyf"
	"fyf-go/internal/hash"
	"fyf-go/internal/model"
	"fyf-go/internal/objectstore"
	"fyf-go/internal/store"
)

// FYFApp is the application layer between the CLI and FYFService.
// It constructs all dependencies from config and manages their lifecycle
// on Close.
type FYFApp struct {
	cfg     *config.Config
	store   *store.SQLiteStore
	cache   fyf.Cache
	objects fyf.ObjectStore
	service *fyf.FYFService
	server  *api.Server
	logFile *os.File
}

// NewFYFApp creates a fully wired FYFApp from the given config.
// The caller must call Close when done.
func NewFYFApp(ctx context.Context, cfg *config.Config) (*FYFApp, error) {
	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	st, err := store.NewStoreFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if err := st.CheckMigrations(); err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	ca, err := cache.NewCacheFromConfig(ctx, cfg.Cache)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	obj, err := objectstore.NewObjectStoreFromConfig(ctx, cfg.Objects)
	if err != nil {
		ca.Close()
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	hasher, err := hash.NewHasherFromConfig(cfg.Hasher)
	if err != nil {
		ca.Close()
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating password hasher: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	svc := fyf.NewFYFService(st, ca, obj, hasher, adapter, fyf.RealClock{}, fyf.UUIDGenerator{}, fyf.Options{
		CacheTTL:      time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		MaxSessionTTL: time.Duration(cfg.Session.MaxTTLHours) * time.Hour,
	})

	loginTTL := time.Duration(cfg.Session.LoginTTLHours) * time.Hour
	srv := api.NewServer(svc, adapter, fyf.RealClock{}, cfg.Server.Addr, loginTTL)

	return &FYFApp{
		cfg:     cfg,
		store:   st,
		cache:   ca,
		objects: obj,
		service: svc,
		server:  srv,
		logFile: logFile,
	}, nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (a *FYFApp) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}

// Addr returns the configured HTTP listen address.
func (a *FYFApp) Addr() string {
	return a.cfg.Server.Addr
}

// AddUser creates a user account. Used by the CLI "user add" command.
func (a *FYFApp) AddUser(ctx context.Context, username, displayName, password string) (*model.User, error) {
	return a.service.CreateUser(ctx, username, displayName, password)
}

// Close releases all resources in reverse construction order.
func (a *FYFApp) Close() error {
	var firstErr error

	if err := a.cache.Close(); err != nil {
		firstErr = fmt.Errorf("closing cache: %w", err)
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
