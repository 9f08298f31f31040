package fyf_test

import (
	"context"
	"testing"

	"fyf-go/internal/cache"
	"fyf-go/internal/fyf"
	"fyf-go/internal/hash"
	"fyf-go/internal/model"
	"fyf-go/internal/objectstore"
	"fyf-go/internal/store"
	"fyf-go/internal/testutil"
)

// fixture bundles a FYFService with its fakes so tests can reach behind
// the service when asserting on stored or cached state.
type fixture struct {
	store   *store.SQLiteStore
	cache   *cache.MemoryCache
	objects *objectstore.MemoryObjectStore
	clock   *testutil.StubClock
	svc     *fyf.FYFService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := testutil.NewTestStore(t)
	ca := testutil.NewTestCache(t)
	obj := objectstore.NewMemoryObjectStore("test-bucket")
	clock := testutil.FixedClock()

	svc := fyf.NewFYFService(st, ca, obj, hash.NewPlainHasher(), fyf.NewNopLogger(),
		clock, testutil.NewStubIDGenerator(), fyf.Options{})

	return &fixture{store: st, cache: ca, objects: obj, clock: clock, svc: svc}
}

// addUser creates a user for tests that just need an author id to hang
// entries on.
func (f *fixture) addUser(t *testing.T, username string) *model.User {
	t.Helper()

	user, err := f.svc.CreateUser(context.Background(), username, username, "secret")
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", username, err)
	}
	return user
}

// addEntry creates a finalized-or-pending entry via the service.
func (f *fixture) addEntry(t *testing.T, name string, typ model.EntryType, authorID, parentID string) *model.Entry {
	t.Helper()

	entry, err := f.svc.AddEntry(context.Background(), name, typ, authorID, parentID)
	if err != nil {
		t.Fatalf("AddEntry(%s) error = %v", name, err)
	}
	return entry
}
