package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service-backend/internal/model"
)

// fakeDirectory maps user IDs to companies for both lookup flavors.
type fakeDirectory struct {
	byManager map[int64]*model.ServiceCompany
	byMember  map[int64]*model.ServiceCompany
}

func (d fakeDirectory) CompanyByManager(_ context.Context, userID int64) (*model.ServiceCompany, error) {
	return d.byManager[userID], nil
}

func (d fakeDirectory) CompanyOfMember(_ context.Context, userID int64) (*model.ServiceCompany, error) {
	if c := d.byManager[userID]; c != nil {
		return c, nil
	}
	return d.byMember[userID], nil
}

func TestResolve(t *testing.T) {
	company := &model.ServiceCompany{ID: 3, Name: "Servicing North"}
	dir := fakeDirectory{
		byManager: map[int64]*model.ServiceCompany{10: company},
		byMember:  map[int64]*model.ServiceCompany{11: company},
	}

	testCases := []struct {
		name   string
		user   *model.User
		policy Policy
		want   Scope
	}{
		{
			name: "no identity resolves to anonymous",
			user: nil,
			want: Scope{Tier: TierAnonymous},
		},
		{
			name: "inactive user resolves to anonymous",
			user: &model.User{ID: 1, IsSuperuser: true},
			want: Scope{Tier: TierAnonymous},
		},
		{
			name: "superuser resolves to admin",
			user: &model.User{ID: 1, IsSuperuser: true, IsActive: true},
			want: Scope{Tier: TierAdmin, UserID: 1},
		},
		{
			name:   "staff resolves to admin under the staff policy",
			user:   &model.User{ID: 2, IsStaff: true, IsActive: true},
			policy: Policy{StaffIsAdmin: true},
			want:   Scope{Tier: TierAdmin, UserID: 2},
		},
		{
			name: "staff without the staff policy falls through to client",
			user: &model.User{ID: 2, IsStaff: true, IsActive: true},
			want: Scope{Tier: TierClient, UserID: 2},
		},
		{
			name: "company manager resolves to its company",
			user: &model.User{ID: 10, IsActive: true},
			want: Scope{Tier: TierManager, CompanyID: 3, UserID: 10},
		},
		{
			name: "roster membership does not grant manager scope",
			user: &model.User{ID: 11, IsActive: true},
			want: Scope{Tier: TierClient, UserID: 11},
		},
		{
			name: "plain user resolves to client",
			user: &model.User{ID: 42, IsActive: true},
			want: Scope{Tier: TierClient, UserID: 42},
		},
		{
			name:   "admin tier wins over managership",
			user:   &model.User{ID: 10, IsSuperuser: true, IsActive: true},
			policy: Policy{StaffIsAdmin: true},
			want:   Scope{Tier: TierAdmin, UserID: 10},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(context.Background(), tc.user, dir, tc.policy)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	company := &model.ServiceCompany{ID: 3, Name: "Servicing North"}
	dir := fakeDirectory{
		byManager: map[int64]*model.ServiceCompany{10: company},
		byMember:  map[int64]*model.ServiceCompany{11: company},
	}

	testCases := []struct {
		name   string
		user   *model.User
		policy Policy
		want   Classification
	}{
		{
			name:   "superuser is an administrator",
			user:   &model.User{ID: 1, IsSuperuser: true, IsActive: true},
			policy: Policy{StaffIsAdmin: true},
			want:   Classification{Role: RoleManager, Name: AdminDisplayName},
		},
		{
			name: "manager displays as its company",
			user: &model.User{ID: 10, IsActive: true, FirstName: "Pat"},
			want: Classification{Role: RoleServiceCompany, Name: "Servicing North"},
		},
		{
			name: "rostered member also displays as the company",
			user: &model.User{ID: 11, IsActive: true},
			want: Classification{Role: RoleServiceCompany, Name: "Servicing North"},
		},
		{
			name: "client with a first name",
			user: &model.User{ID: 42, IsActive: true, Username: "ivanov", FirstName: "Ivan"},
			want: Classification{Role: RoleClient, Name: "Ivan"},
		},
		{
			name: "client falls back to username",
			user: &model.User{ID: 42, IsActive: true, Username: "ivanov"},
			want: Classification{Role: RoleClient, Name: "ivanov"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(context.Background(), tc.user, dir, tc.policy)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
