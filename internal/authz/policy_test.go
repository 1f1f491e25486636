package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanManageUsers(t *testing.T) {
	assert.True(t, CanManageUsers(Principal{ID: 1, IsStaff: true}))
	assert.False(t, CanManageUsers(Principal{ID: 1}))

	// The superuser flag alone grants visibility, not management
	assert.False(t, CanManageUsers(Principal{ID: 1, IsSuperuser: true}))
}

func TestCanAssignUsers(t *testing.T) {
	assert.True(t, CanAssignUsers(Principal{ID: 1, IsStaff: true}))
	assert.False(t, CanAssignUsers(Principal{ID: 1}))
	assert.False(t, CanAssignUsers(Principal{ID: 1, IsSuperuser: true}))
}

func TestCanViewAllTasks(t *testing.T) {
	assert.True(t, CanViewAllTasks(Principal{ID: 1, IsSuperuser: true}))
	assert.False(t, CanViewAllTasks(Principal{ID: 1, IsStaff: true}))
	assert.False(t, CanViewAllTasks(Principal{ID: 1}))
}

func TestCanViewTask(t *testing.T) {
	tests := []struct {
		name        string
		p           Principal
		creatorID   uint64
		assigneeIDs []uint64
		want        bool
	}{
		{
			name:      "creator sees own task",
			p:         Principal{ID: 1},
			creatorID: 1,
			want:      true,
		},
		{
			name:        "assignee sees task",
			p:           Principal{ID: 2},
			creatorID:   1,
			assigneeIDs: []uint64{2, 3},
			want:        true,
		},
		{
			name:        "unrelated user is outside the scope",
			p:           Principal{ID: 4},
			creatorID:   1,
			assigneeIDs: []uint64{2, 3},
			want:        false,
		},
		{
			name:      "superuser sees everything",
			p:         Principal{ID: 9, IsSuperuser: true},
			creatorID: 1,
			want:      true,
		},
		{
			name:      "staff without assignment does not see",
			p:         Principal{ID: 9, IsStaff: true},
			creatorID: 1,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewTask(tt.p, tt.creatorID, tt.assigneeIDs))
		})
	}
}

func TestCanModifyTask(t *testing.T) {
	assert.True(t, CanModifyTask(Principal{ID: 1}, 1))
	assert.True(t, CanModifyTask(Principal{ID: 9, IsStaff: true}, 1))
	assert.False(t, CanModifyTask(Principal{ID: 2}, 1))

	// The superuser flag grants visibility, not mutation
	assert.False(t, CanModifyTask(Principal{ID: 2, IsSuperuser: true}, 1))
}

func TestCanDeleteTask(t *testing.T) {
	assert.True(t, CanDeleteTask(Principal{ID: 1}, 1))
	assert.True(t, CanDeleteTask(Principal{ID: 9, IsStaff: true}, 1))
	assert.False(t, CanDeleteTask(Principal{ID: 2}, 1))
}
