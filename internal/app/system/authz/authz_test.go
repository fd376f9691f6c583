package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func withTestUser(id, name, role string) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	return auth.WithTestUser(req, &auth.SessionUser{ID: id, Name: name, Role: role})
}

func TestUserCtx(t *testing.T) {
	validID := primitive.NewObjectID().Hex()

	tests := []struct {
		name     string
		userID   string
		userRole string
		wantRole string
		wantOK   bool
	}{
		{"admin user", validID, "admin", "admin", true},
		{"regular user", validID, "user", "user", true},
		{"uppercase role normalized", validID, "SUPER", "super", true},
		{"invalid user id", "not-a-hex-id", "admin", "visitor", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withTestUser(tt.userID, "Someone", tt.userRole)
			role, _, userID, ok := UserCtx(req)
			if role != tt.wantRole {
				t.Errorf("role = %q, want %q", role, tt.wantRole)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK && !userID.IsZero() {
				t.Errorf("userID = %v, want NilObjectID", userID)
			}
		})
	}

	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		role, name, userID, ok := UserCtx(req)
		if role != "visitor" || name != "" || !userID.IsZero() || ok {
			t.Errorf("UserCtx() = (%q, %q, %v, %v), want (visitor, , NilObjectID, false)", role, name, userID, ok)
		}
	})
}

func TestIsAdmin(t *testing.T) {
	validID := primitive.NewObjectID().Hex()

	tests := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"super", true},
		{"user", false},
		{"visitor", false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsAdmin(withTestUser(validID, "X", tt.role)); got != tt.want {
				t.Errorf("IsAdmin(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestHasRole(t *testing.T) {
	validID := primitive.NewObjectID().Hex()

	req := withTestUser(validID, "X", "admin")
	if !HasRole(req, "admin", "super") {
		t.Error("HasRole(admin; admin,super) = false, want true")
	}
	if HasRole(req, "super") {
		t.Error("HasRole(admin; super) = true, want false")
	}
	if HasRole(httptest.NewRequest("GET", "/", nil), "admin") {
		t.Error("HasRole with no user = true, want false")
	}
}

func TestCanModify(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	t.Run("owner can modify", func(t *testing.T) {
		req := withTestUser(owner.Hex(), "Owner", "user")
		if !CanModify(req, owner) {
			t.Error("CanModify(owner) = false, want true")
		}
	})
	t.Run("non-owner cannot modify", func(t *testing.T) {
		req := withTestUser(other.Hex(), "Other", "user")
		if CanModify(req, owner) {
			t.Error("CanModify(other user) = true, want false")
		}
	})
	t.Run("admin can modify anything", func(t *testing.T) {
		req := withTestUser(other.Hex(), "Admin", "admin")
		if !CanModify(req, owner) {
			t.Error("CanModify(admin) = false, want true")
		}
	})
}
