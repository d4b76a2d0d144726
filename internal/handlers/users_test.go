package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/ndt-worklog/internal/dto"
	"github.com/yukikurage/ndt-worklog/internal/models"
)

func TestUserHandler_ListRequiresLeader(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/users", nil, env.login(t, env.operator))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/users?role=operator", nil, env.login(t, env.teamLeader))
	require.Equal(t, http.StatusOK, w.Code)
	response := decode[struct {
		Users []dto.UserDTO `json:"users"`
	}](t, w)
	assert.Len(t, response.Users, 2)
}

func TestUserHandler_CreateAndChangeRole(t *testing.T) {
	env := setupTestEnv(t)
	cookies := env.login(t, env.admin)

	w := env.do(t, http.MethodPost, "/api/users", map[string]string{
		"username": "peach",
		"password": "supersecret",
		"role":     "team_leader",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.UserDTO](t, w)
	assert.Equal(t, models.RoleTeamLeader, created.Role)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/role", created.ID), map[string]string{"role": "admin"}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.RoleAdmin, decode[dto.UserDTO](t, w).Role)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/role", created.ID), map[string]string{"role": "owner"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/role", env.operator.ID), map[string]string{"role": "admin"}, env.login(t, env.teamLeader))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_StatusSelfGuard(t *testing.T) {
	env := setupTestEnv(t)
	cookies := env.login(t, env.teamLeader)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/status", env.teamLeader.ID), map[string]bool{"enabled": false}, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/status", env.operator.ID), map[string]any{}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/status", env.operator.ID), map[string]bool{"enabled": false}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[dto.UserDTO](t, w).Enabled)
}

func TestUserHandler_Delete(t *testing.T) {
	env := setupTestEnv(t)
	cookies := env.login(t, env.admin)

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", env.admin.ID), nil, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", env.other.ID), nil, env.login(t, env.teamLeader))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", env.other.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/users/9999", nil, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
