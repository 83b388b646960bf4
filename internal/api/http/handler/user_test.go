package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apicontext "github.com/dtroode/authkeeper-server/internal/api/context"
	"github.com/dtroode/authkeeper-server/internal/mocks"
	"github.com/dtroode/authkeeper-server/internal/model"
	"github.com/dtroode/authkeeper-server/internal/testutil"
)

func newUserEngine(t *testing.T, claims *model.AccessClaims) (*gin.Engine, *mocks.UserService) {
	t.Helper()
	svc := mocks.NewUserService(t)
	ctxMgr := apicontext.NewManager()
	h := NewUser(svc, ctxMgr, testutil.MakeNoopLogger())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Request = c.Request.WithContext(ctxMgr.SetClaimsToContext(c.Request.Context(), *claims))
		}
		c.Next()
	})
	r.GET("/users/me", h.Me)
	r.GET("/users", h.List)
	return r, svc
}

func TestUser_Me(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		user := testPublicUser()
		r, svc := newUserEngine(t, &model.AccessClaims{UserID: user.ID, Role: model.RoleUser})
		svc.On("GetUser", mock.Anything, user.ID).Return(user, nil).Once()

		w := doRequest(r, http.MethodGet, "/users/me", "")

		require.Equal(t, http.StatusOK, w.Code)
		got := decodeBody(t, w)["user"].(map[string]any)
		assert.Equal(t, user.Email, got["email"])
		assert.NotContains(t, got, "passwordHash")
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		r, svc := newUserEngine(t, &model.AccessClaims{UserID: id, Role: model.RoleUser})
		svc.On("GetUser", mock.Anything, id).Return(model.PublicUser{}, model.ErrNotFound).Once()

		w := doRequest(r, http.MethodGet, "/users/me", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("no claims", func(t *testing.T) {
		r, _ := newUserEngine(t, nil)

		w := doRequest(r, http.MethodGet, "/users/me", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUser_List(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		claims := model.AccessClaims{UserID: uuid.New(), Role: model.RoleAdmin}
		r, svc := newUserEngine(t, &claims)
		svc.On("ListUsers", mock.Anything, claims).Return([]model.PublicUser{testPublicUser(), testPublicUser()}, nil).Once()

		w := doRequest(r, http.MethodGet, "/users", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["users"], 2)
	})

	t.Run("forbidden", func(t *testing.T) {
		claims := model.AccessClaims{UserID: uuid.New(), Role: model.RoleUser}
		r, svc := newUserEngine(t, &claims)
		svc.On("ListUsers", mock.Anything, claims).Return(nil, model.ErrForbidden).Once()

		w := doRequest(r, http.MethodGet, "/users", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "fail", decodeBody(t, w)["status"])
	})
}
