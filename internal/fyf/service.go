package fyf

import "time"

// Defaults for Options fields left zero.
const (
	DefaultCacheTTL         = 60 * time.Second
	DefaultMaxSessionTTL    = 30 * 24 * time.Hour
	DefaultUploadURLExpiry  = 5 * time.Minute
	DefaultContentURLExpiry = 6 * time.Hour
)

// Options tunes service behavior. The zero value selects the defaults.
type Options struct {
	// CacheTTL bounds how long cached reads may serve a stale value.
	CacheTTL time.Duration

	// MaxSessionTTL is the longest lifetime CreateSession accepts.
	MaxSessionTTL time.Duration

	// UploadURLExpiry is the validity window of presigned upload URLs.
	UploadURLExpiry time.Duration

	// ContentURLExpiry is the validity window of presigned download URLs.
	ContentURLExpiry time.Duration
}

func (o Options) withDefaults() Options {
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.MaxSessionTTL == 0 {
		o.MaxSessionTTL = DefaultMaxSessionTTL
	}
	if o.UploadURLExpiry == 0 {
		o.UploadURLExpiry = DefaultUploadURLExpiry
	}
	if o.ContentURLExpiry == 0 {
		o.ContentURLExpiry = DefaultContentURLExpiry
	}
	return o
}

// FYFService is the orchestration layer for the entry lifecycle, user
// accounts and sessions. Reads go through the cache and fall back to the
// store; mutations hit the store atomically (row change + audit row) and
// then issue targeted cache invalidations. A reader racing between commit
// and invalidation may observe a stale value for up to CacheTTL.
type FYFService struct {
	store   Store
	cache   Cache
	objects ObjectStore
	hasher  PasswordHasher
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	opts    Options
}

// NewFYFService creates a new FYFService with the provided dependencies.
func NewFYFService(store Store, cache Cache, objects ObjectStore, hasher PasswordHasher, logger Logger, clock Clock, idgen IDGenerator, opts Options) *FYFService {
	return &FYFService{
		store:   store,
		cache:   cache,
		objects: objects,
		hasher:  hasher,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		opts:    opts.withDefaults(),
	}
}
