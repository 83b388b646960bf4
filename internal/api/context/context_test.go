package context

import (
	stdctx "context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dtroode/authkeeper-server/internal/model"
)

func TestManager_SetAndGetClaims(t *testing.T) {
	m := NewManager()
	claims := model.AccessClaims{UserID: uuid.New(), Role: model.RoleAdmin}

	ctx := m.SetClaimsToContext(stdctx.Background(), claims)

	got, ok := m.GetClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, got)
}

func TestManager_GetClaims_NotFound(t *testing.T) {
	m := NewManager()
	_, ok := m.GetClaimsFromContext(stdctx.Background())
	assert.False(t, ok)
}

func TestManager_SetClaims_Overrides(t *testing.T) {
	m := NewManager()
	first := model.AccessClaims{UserID: uuid.New(), Role: model.RoleUser}
	second := model.AccessClaims{UserID: uuid.New(), Role: model.RoleAdmin}

	ctx := m.SetClaimsToContext(m.SetClaimsToContext(stdctx.Background(), first), second)

	got, ok := m.GetClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, second, got)
}
