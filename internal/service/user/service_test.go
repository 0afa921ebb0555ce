package user

import (
	"context"
	"errors"
	"testing"

	"social_profile_server/internal/dao/mysql/repository/repotest"
	"social_profile_server/internal/model"
	"social_profile_server/pkg/errorx"
)

func TestIsAdmin(t *testing.T) {
	store := repotest.NewStore()
	store.AddUser("U1", "alice")
	admin := store.AddUser("A1", "root")
	admin.IsAdmin = 1
	disabled := store.AddUser("A2", "old-root")
	disabled.IsAdmin = 1
	disabled.Status = model.UserStatusDisable

	svc := NewUserService(store.Repositories())
	ctx := context.Background()
	cases := []struct {
		uuid string
		want bool
	}{
		{"U1", false},
		{"A1", true},
		{"A2", false},
	}
	for _, tc := range cases {
		got, err := svc.IsAdmin(ctx, tc.uuid)
		if err != nil {
			t.Fatalf("IsAdmin(%s): %v", tc.uuid, err)
		}
		if got != tc.want {
			t.Fatalf("IsAdmin(%s) = %v, want %v", tc.uuid, got, tc.want)
		}
	}
	if _, err := svc.IsAdmin(ctx, "ghost"); !errors.Is(err, errorx.ErrUserNotExist) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestGetUserInfo(t *testing.T) {
	store := repotest.NewStore()
	store.AddUser("U1", "alice")
	info, err := NewUserService(store.Repositories()).GetUserInfo(context.Background(), "U1")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if info.Uuid != "U1" || info.Nickname != "alice" {
		t.Fatalf("info = %+v", info)
	}
}
