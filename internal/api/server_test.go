package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"fyf-go/internal/api"
	"fyf-go/internal/fyf"
	"fyf-go/internal/hash"
	"fyf-go/internal/model"
	"fyf-go/internal/objectstore"
	"fyf-go/internal/testutil"
)

// newTestServer builds a Server over in-memory backends and serves it via
// httptest. Service and server share one stub clock so the session-expiry
// check at the HTTP boundary can be driven deterministically.
func newTestServer(t *testing.T) (*httptest.Server, *objectstore.MemoryObjectStore, *testutil.StubClock) {
	t.Helper()

	st := testutil.NewTestStore(t)
	ca := testutil.NewTestCache(t)
	obj := objectstore.NewMemoryObjectStore("test-bucket")

	// The clock starts at wall time: the login cookie's Expires field is
	// judged by the client's cookie jar against real time, so a fixed past
	// date would make the jar drop the session cookie on arrival.
	clock := testutil.NewStubClock(time.Now())

	svc := fyf.NewFYFService(st, ca, obj, hash.NewPlainHasher(), fyf.NewNopLogger(),
		clock, fyf.UUIDGenerator{}, fyf.Options{})

	srv := api.NewServer(svc, fyf.NewNopLogger(), clock, "127.0.0.1:0", 7*24*time.Hour)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, obj, clock
}

// newClient returns an http.Client with its own cookie jar, i.e. its own
// login identity.
func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	return &http.Client{Jar: jar}
}

// do sends a JSON request and decodes the JSON response into out (when
// out is non-nil). It returns the status code.
func do(t *testing.T, client *http.Client, method, url string, body any, out any) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response of %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

// register creates a user account through the API.
func register(t *testing.T, client *http.Client, baseURL, username, password string) *model.User {
	t.Helper()

	var user model.User
	status := do(t, client, http.MethodPost, baseURL+"/user", map[string]string{
		"username":     username,
		"display_name": username,
		"password":     password,
	}, &user)
	if status != http.StatusOK {
		t.Fatalf("register %s: status = %d", username, status)
	}
	return &user
}

// login authenticates the client, storing the session cookie in its jar.
func login(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()

	status := do(t, client, http.MethodPost, baseURL+"/user/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("login %s: status = %d", username, status)
	}
}

func TestServer_Health(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_Auth(t *testing.T) {
	ts, _, clock := newTestServer(t)
	client := newClient(t)

	t.Run("protected routes require a session", func(t *testing.T) {
		status := do(t, newClient(t), http.MethodGet, ts.URL+"/user", nil, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("GET /user without session: status = %d, want 401", status)
		}
	})

	register(t, client, ts.URL, "alice", "pw")

	t.Run("login with unknown username", func(t *testing.T) {
		status := do(t, client, http.MethodPost, ts.URL+"/user/login", map[string]string{
			"username": "nobody", "password": "pw",
		}, nil)
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		status := do(t, client, http.MethodPost, ts.URL+"/user/login", map[string]string{
			"username": "alice", "password": "wrong",
		}, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("login, current user, logout", func(t *testing.T) {
		login(t, client, ts.URL, "alice", "pw")

		var user model.User
		status := do(t, client, http.MethodGet, ts.URL+"/user", nil, &user)
		if status != http.StatusOK || user.Username != "alice" {
			t.Errorf("GET /user: status = %d, user = %+v", status, user)
		}

		status = do(t, client, http.MethodPost, ts.URL+"/user/logout", nil, nil)
		if status != http.StatusOK {
			t.Errorf("POST /user/logout: status = %d", status)
		}

		status = do(t, client, http.MethodGet, ts.URL+"/user", nil, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("GET /user after logout: status = %d, want 401", status)
		}
	})

	t.Run("expired session is rejected", func(t *testing.T) {
		login(t, client, ts.URL, "alice", "pw")

		if got := do(t, client, http.MethodGet, ts.URL+"/user", nil, nil); got != http.StatusOK {
			t.Fatalf("GET /user: status = %d, want 200", got)
		}

		// Sessions from login are valid for 7 days.
		clock.Advance(8 * 24 * time.Hour)

		if got := do(t, client, http.MethodGet, ts.URL+"/user", nil, nil); got != http.StatusUnauthorized {
			t.Errorf("GET /user with expired session: status = %d, want 401", got)
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		status := do(t, client, http.MethodPost, ts.URL+"/user", map[string]string{
			"username": "alice", "display_name": "Alice", "password": "pw",
		}, nil)
		if status != http.StatusConflict {
			t.Errorf("status = %d, want 409", status)
		}
	})
}

func TestServer_EntryLifecycle(t *testing.T) {
	ts, objects, _ := newTestServer(t)
	client := newClient(t)

	register(t, client, ts.URL, "alice", "pw")
	login(t, client, ts.URL, "alice", "pw")

	type addResponse struct {
		Entry     *model.Entry `json:"entry"`
		UploadURL string       `json:"upload_url"`
	}

	var dir addResponse
	status := do(t, client, http.MethodPost, ts.URL+"/entry", map[string]string{
		"name": "docs", "type": "directory",
	}, &dir)
	if status != http.StatusOK {
		t.Fatalf("POST /entry (directory): status = %d", status)
	}
	if dir.Entry.Status != model.EntryStatusFinalized {
		t.Errorf("directory status = %s, want finalized", dir.Entry.Status)
	}
	if dir.UploadURL != "" {
		t.Errorf("directory upload_url = %q, want empty", dir.UploadURL)
	}

	var file addResponse
	status = do(t, client, http.MethodPost, ts.URL+"/entry", map[string]string{
		"name": "report.pdf", "type": "file", "parent_id": dir.Entry.ID,
	}, &file)
	if status != http.StatusOK {
		t.Fatalf("POST /entry (file): status = %d", status)
	}
	if file.Entry.Status != model.EntryStatusPending {
		t.Errorf("file status = %s, want pending", file.Entry.Status)
	}
	if file.UploadURL == "" {
		t.Error("file upload_url is empty")
	}

	// Simulate the client's upload, then finalize.
	objects.Put(file.Entry.ID, make([]byte, 4096))

	var finalized model.Entry
	status = do(t, client, http.MethodPut, ts.URL+"/entry/finalize?id="+file.Entry.ID, nil, &finalized)
	if status != http.StatusOK {
		t.Fatalf("PUT /entry/finalize: status = %d", status)
	}
	if finalized.Status != model.EntryStatusFinalized || finalized.Size != 4096 {
		t.Errorf("finalized = %+v, want finalized with size 4096", finalized)
	}

	var entries []*model.Entry
	status = do(t, client, http.MethodGet, ts.URL+"/entry/metadatas?parent_id="+dir.Entry.ID, nil, &entries)
	if status != http.StatusOK {
		t.Fatalf("GET /entry/metadatas: status = %d", status)
	}
	if len(entries) != 1 || entries[0].ID != file.Entry.ID {
		t.Errorf("entries = %v, want the finalized file", entries)
	}

	var content map[string]string
	status = do(t, client, http.MethodGet, ts.URL+"/entry/content?id="+file.Entry.ID, nil, &content)
	if status != http.StatusOK || content["url"] == "" {
		t.Errorf("GET /entry/content: status = %d, url = %q", status, content["url"])
	}

	// Soft delete, restore, then hard delete.
	var removed model.Entry
	status = do(t, client, http.MethodDelete, ts.URL+"/entry?id="+file.Entry.ID, nil, &removed)
	if status != http.StatusOK || !removed.IsDeleted {
		t.Fatalf("DELETE /entry: status = %d, removed = %+v", status, removed)
	}

	var restored model.Entry
	status = do(t, client, http.MethodPut, ts.URL+"/entry/restore?id="+file.Entry.ID, nil, &restored)
	if status != http.StatusOK || restored.IsDeleted {
		t.Fatalf("PUT /entry/restore: status = %d, restored = %+v", status, restored)
	}

	status = do(t, client, http.MethodDelete, ts.URL+"/entry?id="+file.Entry.ID+"&force=true", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("DELETE /entry?force=true: status = %d", status)
	}
	if objects.Has(file.Entry.ID) {
		t.Error("backing object still present after forced delete")
	}

	status = do(t, client, http.MethodGet, ts.URL+"/entry/metadata?id="+file.Entry.ID, nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("GET /entry/metadata after hard delete: status = %d, want 404", status)
	}
}

func TestServer_PermissionGates(t *testing.T) {
	ts, _, _ := newTestServer(t)

	alice := newClient(t)
	register(t, alice, ts.URL, "alice", "pw")
	login(t, alice, ts.URL, "alice", "pw")

	bob := newClient(t)
	bobUser := register(t, bob, ts.URL, "bob", "pw")
	login(t, bob, ts.URL, "bob", "pw")

	type addResponse struct {
		Entry *model.Entry `json:"entry"`
	}
	var created addResponse
	status := do(t, alice, http.MethodPost, ts.URL+"/entry", map[string]string{
		"name": "docs", "type": "directory",
	}, &created)
	if status != http.StatusOK {
		t.Fatalf("POST /entry: status = %d", status)
	}
	id := created.Entry.ID

	t.Run("private entries are hidden from others", func(t *testing.T) {
		status := do(t, bob, http.MethodGet, ts.URL+"/entry/metadata?id="+id, nil, nil)
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})

	t.Run("public_readonly grants view but not modify", func(t *testing.T) {
		status := do(t, alice, http.MethodPut, ts.URL+"/entry/metadata?id="+id, map[string]any{
			"permission": "public_readonly",
		}, nil)
		if status != http.StatusOK {
			t.Fatalf("permission change: status = %d", status)
		}

		if got := do(t, bob, http.MethodGet, ts.URL+"/entry/metadata?id="+id, nil, nil); got != http.StatusOK {
			t.Errorf("bob view: status = %d, want 200", got)
		}
		if got := do(t, bob, http.MethodPut, ts.URL+"/entry/metadata?id="+id, map[string]any{
			"name": "hacked",
		}, nil); got != http.StatusNotFound {
			t.Errorf("bob modify: status = %d, want 404", got)
		}
	})

	t.Run("inclusive membership grants modify but not permission changes", func(t *testing.T) {
		status := do(t, alice, http.MethodPut, ts.URL+"/entry/metadata?id="+id, map[string]any{
			"permission":           "inclusive",
			"permission_inclusive": []string{bobUser.ID},
		}, nil)
		if status != http.StatusOK {
			t.Fatalf("permission change: status = %d", status)
		}

		if got := do(t, bob, http.MethodPut, ts.URL+"/entry/metadata?id="+id, map[string]any{
			"name": "shared",
		}, nil); got != http.StatusOK {
			t.Errorf("bob rename: status = %d, want 200", got)
		}

		// Changing the permission mode stays author-only.
		if got := do(t, bob, http.MethodPut, ts.URL+"/entry/metadata?id="+id, map[string]any{
			"permission": "public",
		}, nil); got != http.StatusForbidden {
			t.Errorf("bob permission change: status = %d, want 403", got)
		}
	})
}
