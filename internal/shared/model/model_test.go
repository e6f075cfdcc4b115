package model

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Page: 1, Limit: DefaultPageLimit}},
		{Page{Page: -3, Limit: -1}, Page{Page: 1, Limit: DefaultPageLimit}},
		{Page{Page: 2, Limit: 500}, Page{Page: 2, Limit: MaxPageLimit}},
		{Page{Page: 4, Limit: 10}, Page{Page: 4, Limit: 10}},
		{Page{Page: math.MaxInt, Limit: 10}, Page{Page: MaxPage, Limit: 10}},
	}

	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestPageOffset(t *testing.T) {
	if got := (Page{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Errorf("Offset = %d, want 20", got)
	}
	if got := (Page{}).Offset(); got != 0 {
		t.Errorf("Offset = %d, want 0", got)
	}
	huge := Page{Page: math.MaxInt, Limit: MaxPageLimit}.Offset()
	if huge < 0 || huge > math.MaxInt32 {
		t.Errorf("Offset for huge page = %d, want within [0, MaxInt32]", huge)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total int
		limit int
		pages int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{250, 100, 3},
	}

	for _, tt := range tests {
		p := NewPagination(Page{Page: 1, Limit: tt.limit}, tt.total)
		if p.TotalPages != tt.pages {
			t.Errorf("total=%d limit=%d: TotalPages = %d, want %d", tt.total, tt.limit, p.TotalPages, tt.pages)
		}
		if p.Total != tt.total {
			t.Errorf("Total = %d, want %d", p.Total, tt.total)
		}
	}
}

func TestUserRole(t *testing.T) {
	tests := []struct {
		role  UserRole
		valid bool
		admin bool
	}{
		{UserRoleUser, true, false},
		{UserRoleModerator, true, true},
		{UserRoleAdmin, true, true},
		{UserRoleSuperAdmin, true, true},
		{UserRole("owner"), false, false},
		{UserRole(""), false, false},
	}

	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.valid {
			t.Errorf("UserRole(%q).Valid() = %v, want %v", tt.role, got, tt.valid)
		}
		if got := tt.role.IsAdminTier(); got != tt.admin {
			t.Errorf("UserRole(%q).IsAdminTier() = %v, want %v", tt.role, got, tt.admin)
		}
	}
}

func TestUserStatusValid(t *testing.T) {
	for _, s := range []UserStatus{UserStatusActive, UserStatusDisabled, UserStatusSuspended, UserStatusDeleted} {
		if !s.Valid() {
			t.Errorf("UserStatus(%q) should be valid", s)
		}
	}
	if UserStatus("banned").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestOrderStatusValid(t *testing.T) {
	if len(OrderStatuses) != 6 {
		t.Fatalf("OrderStatuses has %d entries, want 6", len(OrderStatuses))
	}
	for _, s := range OrderStatuses {
		if !s.Valid() {
			t.Errorf("OrderStatus(%q) should be valid", s)
		}
	}
	if OrderStatus("lost").Valid() {
		t.Error("unknown order status should be invalid")
	}
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	u := User{ID: 1, Email: "a@example.com", PasswordHash: "$2a$10$secret", Role: UserRoleAdmin}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") || strings.Contains(string(data), "passwordHash") {
		t.Errorf("password hash leaked: %s", data)
	}
	if !strings.Contains(string(data), `"role":"admin"`) {
		t.Errorf("role missing: %s", data)
	}
}
