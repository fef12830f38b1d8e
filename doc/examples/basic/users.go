// Package basic shows a user service declared as tyclient descriptors.
package basic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/broady/tyclient"
)

// [snippet:types]
type CreateUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type User struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"passwordHash"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}

type GetUser struct {
	ID int `json:"id"`
}

type GetUsers struct {
	Name string `json:"name,omitempty"`
}

type DeleteUser struct {
	ID int `json:"id"`
}

type UpdateUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty"`
}

// [/snippet:types]

// [snippet:descriptors]

// UserOperations is the user API.
type UserOperations struct {
	Create tyclient.Descriptor[CreateUser, User] `op:"create"`
	Delete tyclient.Descriptor[DeleteUser, any]  `op:"delete"`
	Get    tyclient.Descriptor[GetUser, User]    `op:"get"`
	Query  tyclient.Descriptor[GetUsers, []User] `op:"query"`
	Update tyclient.Descriptor[UpdateUser, User] `op:"update"`
}

var users = tyclient.JSONCodec[User]{}

func NewUserOperations() UserOperations {
	return UserOperations{
		Create: tyclient.Descriptor[CreateUser, User]{
			Method:  tyclient.MethodPost,
			Route:   "/users",
			Decoder: users,
		},
		Delete: tyclient.Descriptor[DeleteUser, any]{
			Method: tyclient.MethodDelete,
			Route:  "/users",
		},
		Get: tyclient.Descriptor[GetUser, User]{
			Method:  tyclient.MethodGet,
			Route:   "/users/:id",
			Decoder: users,
		},
		Query: tyclient.Descriptor[GetUsers, []User]{
			Method: tyclient.MethodGet,
			Route:  "/users",
		},
		Update: tyclient.Descriptor[UpdateUser, User]{
			Method:  tyclient.MethodPost,
			Route:   "/users",
			Decoder: users,
			RequestFunc: func(u UpdateUser) tyclient.RequestOptions {
				return tyclient.RequestOptions{
					Header: http.Header{"X-User-Id": {fmt.Sprint(u.ID)}},
				}
			},
		},
	}
}

// [/snippet:descriptors]

// Users is a typed handle on the user namespace of a client.
type Users struct {
	Create tyclient.Operation[CreateUser, User]
	Delete tyclient.Operation[DeleteUser, any]
	Get    tyclient.Operation[GetUser, User]
	Query  tyclient.Operation[GetUsers, []User]
	Update tyclient.Operation[UpdateUser, User]
}

// [snippet:client]

// NewUsers attaches the user operations to c under the "user" namespace
// and returns them typed.
func NewUsers(c *tyclient.Client) (*Users, error) {
	if err := c.Namespace("user", NewUserOperations()); err != nil {
		return nil, err
	}

	var (
		u   Users
		err error
	)
	if u.Create, err = tyclient.Lookup[CreateUser, User](c, "user", "create"); err != nil {
		return nil, err
	}
	if u.Delete, err = tyclient.Lookup[DeleteUser, any](c, "user", "delete"); err != nil {
		return nil, err
	}
	if u.Get, err = tyclient.Lookup[GetUser, User](c, "user", "get"); err != nil {
		return nil, err
	}
	if u.Query, err = tyclient.Lookup[GetUsers, []User](c, "user", "query"); err != nil {
		return nil, err
	}
	if u.Update, err = tyclient.Lookup[UpdateUser, User](c, "user", "update"); err != nil {
		return nil, err
	}
	return &u, nil
}

// [/snippet:client]

// PasswordHash creates a user and returns the hash the server stored.
func PasswordHash(ctx context.Context, u *Users) (string, error) {
	resp, err := u.Create(ctx, CreateUser{Name: "Test", Email: "example@example.com", Password: "p4ssw0rd"})
	if err != nil {
		return "", err
	}
	return resp.Data.PasswordHash, nil
}

// Handler is a minimal in-memory user server for the example.
func Handler() http.Handler {
	mux := http.NewServeMux()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var mu sync.Mutex
	stored := map[int]User{}
	next := 1

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		var req CreateUser
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		u := User{ID: next, Name: req.Name, Email: req.Email, PasswordHash: "hash:" + req.Password, CreatedAt: created}
		stored[u.ID] = u
		next++
		writeJSON(w, http.StatusCreated, u)
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		var id int
		fmt.Sscan(r.PathValue("id"), &id)
		u, ok := stored[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, u)
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		name := r.URL.Query().Get("name")
		out := []User{}
		for id := 1; id < next; id++ {
			if u, ok := stored[id]; ok && (name == "" || u.Name == name) {
				out = append(out, u)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("DELETE /users", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		var id int
		fmt.Sscan(r.URL.Query().Get("id"), &id)
		delete(stored, id)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}
