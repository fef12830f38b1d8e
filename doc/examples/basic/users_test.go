package basic

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/broady/tyclient"
)

func newUsers(t *testing.T) *Users {
	t.Helper()
	srv := httptest.NewServer(Handler())
	t.Cleanup(srv.Close)

	c, err := tyclient.NewClient(tyclient.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	u, err := NewUsers(c)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	u := newUsers(t)

	hash, err := PasswordHash(ctx, u)
	if err != nil {
		t.Fatalf("PasswordHash: %v", err)
	}
	if hash != "hash:p4ssw0rd" {
		t.Errorf("unexpected hash %q", hash)
	}

	got, err := u.Get(ctx, GetUser{ID: 1})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Data.Name != "Test" || got.Data.CreatedAt.IsZero() {
		t.Errorf("unexpected user %+v", got.Data)
	}

	list, err := u.Query(ctx, GetUsers{Name: "Test"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(list.Data) != 1 {
		t.Errorf("expected one user, got %d", len(list.Data))
	}

	if _, err := u.Delete(ctx, DeleteUser{ID: 1}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err = u.Get(ctx, GetUser{ID: 1})
	if !tyclient.IsCode(err, tyclient.CodeNotFound) || err.Error() != "Not found" {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestUsers_InvalidPayload(t *testing.T) {
	u := newUsers(t)
	_, err := u.Create(context.Background(), CreateUser{Name: "Test", Email: "example@example.com"})
	if !tyclient.IsCode(err, tyclient.CodeInvalidArgument) {
		t.Errorf("expected invalid_argument for missing password, got %v", err)
	}
}
