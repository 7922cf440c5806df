package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleBuyer.Valid())
	assert.True(t, RoleSeller.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("moderator").Valid())
	assert.False(t, Role("Admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestRole_Capabilities(t *testing.T) {
	// Продавцы торгуют но не оценивают, покупатели наоборот
	assert.True(t, RoleSeller.CanSell())
	assert.True(t, RoleAdmin.CanSell())
	assert.False(t, RoleBuyer.CanSell())

	assert.True(t, RoleAdmin.CanModerate())
	assert.False(t, RoleSeller.CanModerate())
	assert.False(t, RoleBuyer.CanModerate())

	assert.True(t, RoleBuyer.CanReview())
	assert.True(t, RoleAdmin.CanReview())
	assert.False(t, RoleSeller.CanReview())
}

func TestPageParams_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       PageParams
		wantPage int
		wantSize int
	}{
		{"zero values get defaults", PageParams{}, 1, DefaultPageSize},
		{"negative page clamps to first", PageParams{Page: -3, Size: 10}, 1, 10},
		{"oversized window clamps to max", PageParams{Page: 2, Size: 1000}, 2, MaxPageSize},
		{"valid window unchanged", PageParams{Page: 4, Size: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.wantPage, tt.in.Page)
			assert.Equal(t, tt.wantSize, tt.in.Size)
		})
	}
}

func TestPageParams_Offset(t *testing.T) {
	assert.Equal(t, 0, PageParams{Page: 1, Size: 50}.Offset())
	assert.Equal(t, 100, PageParams{Page: 3, Size: 50}.Offset())
}
