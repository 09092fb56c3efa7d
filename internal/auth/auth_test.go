package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/linkboard/linkboard/internal/directory"
	"github.com/linkboard/linkboard/internal/storage/memory"
)

func TestIdentify(t *testing.T) {
	t.Parallel()

	users := memory.NewUserStore()
	admin := directory.User{ID: "u-1", Name: "Mabel", Role: directory.RoleAdmin}
	users.Seed(admin, "tok-mabel")
	a := New(users)

	user, err := a.Identify(context.Background(), "tok-mabel")
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if user != admin {
		t.Errorf("user = %+v, want %+v", user, admin)
	}

	if _, err := a.Identify(context.Background(), ""); !errors.Is(err, directory.ErrNoIdentity) {
		t.Errorf("empty token error = %v, want ErrNoIdentity", err)
	}
	if _, err := a.Identify(context.Background(), "tok-unknown"); !errors.Is(err, directory.ErrNoIdentity) {
		t.Errorf("unknown token error = %v, want ErrNoIdentity", err)
	}
}
