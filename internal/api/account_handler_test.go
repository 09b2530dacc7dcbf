package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cuddly-waffle/account-api/internal/api/shared"
	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/mocks"
	"github.com/cuddly-waffle/account-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestUser() *domain.DatabaseUser {
	return domain.NewDatabaseUser("Ruan", "ruan_AAA", "ruan@AAA", domain.Credential{
		PasswordHash: "$2a$10$secret-hash",
		Salt:         "secret-salt",
	})
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func assertNoSecrets(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	assert.NotContains(t, rr.Body.String(), "secret-hash")
	assert.NotContains(t, rr.Body.String(), "secret-salt")
	assert.NotContains(t, rr.Body.String(), `"password"`)
	assert.NotContains(t, rr.Body.String(), `"salt"`)
}

func TestCreateAccount(t *testing.T) {
	user := newTestUser()

	tests := []struct {
		name       string
		body       interface{}
		setup      func(m *mocks.AccountService)
		wantStatus int
		wantError  string
		wantCode   string
	}{
		{
			name: "created",
			body: map[string]string{
				"real_name": "Ruan", "user_name": "ruan_AAA", "email": "ruan@AAA", "password": "pw",
			},
			setup: func(m *mocks.AccountService) {
				m.On("Create", mock.Anything, "Ruan", "ruan_AAA", "ruan@AAA", "pw").Return(user, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing params",
			body: map[string]string{"real_name": "Ruan"},
			setup: func(m *mocks.AccountService) {
				m.On("Create", mock.Anything, "Ruan", "", "", "").
					Return(nil, service.NewMissingParamsError("user_name", "email", "password"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "required paramethers missing user_name, email, password",
			wantCode:   service.CodeMissingParams,
		},
		{
			name: "duplicate",
			body: map[string]string{
				"real_name": "Ruan", "user_name": "ruan_AAA", "email": "ruan@AAA", "password": "pw",
			},
			setup: func(m *mocks.AccountService) {
				m.On("Create", mock.Anything, "Ruan", "ruan_AAA", "ruan@AAA", "pw").Return(nil, &service.Error{
					Kind:    service.KindAlreadyExists,
					Code:    "23505",
					Message: "user already exists",
					Details: map[string]string{"column": "email", "constraint": "users_email_key"},
				})
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Given user already exists",
			wantCode:   "23505",
		},
		{
			name: "invalid email",
			body: map[string]string{
				"real_name": "Ruan", "user_name": "ruan_AAA", "email": "ruanAAA", "password": "pw",
			},
			setup: func(m *mocks.AccountService) {
				m.On("Create", mock.Anything, "Ruan", "ruan_AAA", "ruanAAA", "pw").Return(nil, &service.Error{
					Kind:    service.KindInvalidEmailFormat,
					Code:    "23514",
					Message: "invalid email format",
				})
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid email format",
			wantCode:   "23514",
		},
		{
			name: "store failure",
			body: map[string]string{
				"real_name": "Ruan", "user_name": "ruan_AAA", "email": "ruan@AAA", "password": "pw",
			},
			setup: func(m *mocks.AccountService) {
				m.On("Create", mock.Anything, "Ruan", "ruan_AAA", "ruan@AAA", "pw").
					Return(nil, errors.New("failed to create user: dial postgres://u:hunter2@db/x"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "could not create user",
		},
		{
			name:       "field too long",
			body:       map[string]string{"real_name": string(bytes.Repeat([]byte("a"), 256))},
			setup:      func(m *mocks.AccountService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid real_name: too long",
			wantCode:   "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.AccountService{}
			tt.setup(svc)
			h := NewAccountHandler(svc, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/users/accounts", jsonBody(t, tt.body))
			rr := httptest.NewRecorder()
			h.CreateAccount(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assertNoSecrets(t, rr)
			svc.AssertExpectations(t)

			if tt.wantStatus == http.StatusCreated {
				var got domain.User
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, user.ID, got.ID)
				assert.Equal(t, "ruan_AAA", got.UserName)
				return
			}

			body := decodeError(t, rr)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantCode, body.ErrorCode)
			assert.NotContains(t, rr.Body.String(), "hunter2")
		})
	}
}

func TestCreateAccountConflictInfos(t *testing.T) {
	svc := &mocks.AccountService{}
	svc.On("Create", mock.Anything, "Ruan", "ruan_AAA", "ruan@AAA", "pw").Return(nil, &service.Error{
		Kind:    service.KindAlreadyExists,
		Code:    "23505",
		Message: "user already exists",
		Details: map[string]string{"column": "user_name", "constraint": "users_user_name_key"},
	})
	h := NewAccountHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/accounts", jsonBody(t, map[string]string{
		"real_name": "Ruan", "user_name": "ruan_AAA", "email": "ruan@AAA", "password": "pw",
	}))
	rr := httptest.NewRecorder()
	h.CreateAccount(rr, req)

	body := decodeError(t, rr)
	assert.Equal(t, "user_name", body.ErrorInfos["column"])
	assert.Equal(t, "users_user_name_key", body.ErrorInfos["constraint"])
}

func TestCreateAccountMalformedBody(t *testing.T) {
	svc := &mocks.AccountService{}
	h := NewAccountHandler(svc, nil)

	for name, raw := range map[string]string{
		"empty":     "",
		"truncated": `{"real_name":`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users/accounts", bytes.NewBufferString(raw))
			rr := httptest.NewRecorder()
			h.CreateAccount(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
	svc.AssertNotCalled(t, "Create")
}

func TestListAccounts(t *testing.T) {
	a, b := newTestUser(), newTestUser()
	svc := &mocks.AccountService{}
	svc.On("GetAll", mock.Anything).Return([]*domain.DatabaseUser{a, b}, nil)
	h := NewAccountHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.ListAccounts(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assertNoSecrets(t, rr)

	var got []domain.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
}

func TestListAccountsEmpty(t *testing.T) {
	svc := &mocks.AccountService{}
	svc.On("GetAll", mock.Anything).Return([]*domain.DatabaseUser{}, nil)
	h := NewAccountHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.ListAccounts(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetAccountByID(t *testing.T) {
	user := newTestUser()

	tests := []struct {
		name       string
		id         string
		result     *domain.DatabaseUser
		err        error
		wantStatus int
		wantCode   string
	}{
		{"found", user.ID.String(), user, nil, http.StatusOK, ""},
		{
			"invalid uuid", "not-a-uuid", nil,
			service.NewValidationError(service.CodeInvalidUUID, "id must be a valid uuid", map[string]string{"id": "not-a-uuid"}),
			http.StatusBadRequest, service.CodeInvalidUUID,
		},
		{"not found", uuid.NewString(), nil, service.NewNotFoundError(nil), http.StatusNotFound, service.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.AccountService{}
			svc.On("GetByID", mock.Anything, tt.id).Return(tt.result, tt.err)
			h := NewAccountHandler(svc, nil)

			req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/users/"+tt.id+"/id", nil),
				map[string]string{"id": tt.id})
			rr := httptest.NewRecorder()
			h.GetAccountByID(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assertNoSecrets(t, rr)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rr).ErrorCode)
			}
		})
	}
}

func TestGetAccountByEmail(t *testing.T) {
	user := newTestUser()
	svc := &mocks.AccountService{}
	svc.On("GetByEmail", mock.Anything, "ruan@AAA").Return(user, nil)
	svc.On("GetByEmail", mock.Anything, "nobody@AAA").Return(nil, service.NewNotFoundError(nil))
	h := NewAccountHandler(svc, nil)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/users/ruan@AAA/email", nil),
		map[string]string{"email": "ruan@AAA"})
	rr := httptest.NewRecorder()
	h.GetAccountByEmail(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assertNoSecrets(t, rr)

	req = withURLParams(httptest.NewRequest(http.MethodGet, "/api/users/nobody@AAA/email", nil),
		map[string]string{"email": "nobody@AAA"})
	rr = httptest.NewRecorder()
	h.GetAccountByEmail(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "user not found", decodeError(t, rr).Error)
}

func TestUpdateAccount(t *testing.T) {
	user := newTestUser()
	updated := *user
	updated.UserName = "ruan_BBB"

	svc := &mocks.AccountService{}
	svc.On("UpdateProfile", mock.Anything, user.ID.String(), service.ProfileUpdate{UserName: "ruan_BBB"}).
		Return(&updated, nil)
	h := NewAccountHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/users/"+user.ID.String()+"/id",
		jsonBody(t, map[string]string{"new_user_name": "ruan_BBB"}))
	req = withURLParams(req, map[string]string{"id": user.ID.String()})
	rr := httptest.NewRecorder()
	h.UpdateAccount(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assertNoSecrets(t, rr)
	var got domain.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "ruan_BBB", got.UserName)
	svc.AssertExpectations(t)
}

func TestUpdateAccountWithoutFields(t *testing.T) {
	user := newTestUser()

	for name, body := range map[string]func() io.Reader{
		"no body":      func() io.Reader { return http.NoBody },
		"empty object": func() io.Reader { return bytes.NewBufferString("{}") },
	} {
		t.Run(name, func(t *testing.T) {
			svc := &mocks.AccountService{}
			svc.On("UpdateProfile", mock.Anything, user.ID.String(), service.ProfileUpdate{}).Return(user, nil)
			h := NewAccountHandler(svc, nil)

			req := httptest.NewRequest(http.MethodPatch, "/api/users/"+user.ID.String()+"/id", body())
			req = withURLParams(req, map[string]string{"id": user.ID.String()})
			rr := httptest.NewRecorder()
			h.UpdateAccount(rr, req)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}

	t.Run("malformed body is still rejected", func(t *testing.T) {
		svc := &mocks.AccountService{}
		h := NewAccountHandler(svc, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/users/"+user.ID.String()+"/id",
			bytes.NewBufferString(`{"new_email":`))
		req = withURLParams(req, map[string]string{"id": user.ID.String()})
		rr := httptest.NewRecorder()
		h.UpdateAccount(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "UpdateProfile")
	})
}

func TestUpdateAccountErrors(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", service.NewNotFoundError(nil), http.StatusNotFound, "user not found"},
		{
			"conflict",
			&service.Error{Kind: service.KindAlreadyExists, Code: "23505", Message: "user already exists"},
			http.StatusBadRequest, "Given user already exists",
		},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "could not update user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.AccountService{}
			svc.On("UpdateProfile", mock.Anything, id, mock.Anything).Return(nil, tt.err)
			h := NewAccountHandler(svc, nil)

			req := httptest.NewRequest(http.MethodPatch, "/api/users/"+id+"/id",
				jsonBody(t, map[string]string{"new_email": "x@y"}))
			req = withURLParams(req, map[string]string{"id": id})
			rr := httptest.NewRecorder()
			h.UpdateAccount(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rr).Error)
		})
	}
}

func TestChangePassword(t *testing.T) {
	user := newTestUser()
	id := user.ID.String()

	tests := []struct {
		name       string
		body       map[string]string
		result     *domain.DatabaseUser
		err        error
		wantStatus int
		wantError  string
	}{
		{"changed", map[string]string{"old_password": "old", "new_password": "new"}, user, nil, http.StatusOK, ""},
		{
			"wrong old password",
			map[string]string{"old_password": "bad", "new_password": "new"},
			nil, service.NewUnauthorizedError(), http.StatusUnauthorized, "unauthorized",
		},
		{
			"missing params",
			map[string]string{"new_password": "new"},
			nil,
			service.NewValidationError(service.CodeMissingParams, "new_password and old_password params required", nil),
			http.StatusBadRequest, "new_password and old_password params required",
		},
		{
			"corrupt stored hash",
			map[string]string{"old_password": "old", "new_password": "new"},
			nil, service.NewCryptoError(errors.New("bad hash")), http.StatusInternalServerError, "could not update user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.AccountService{}
			svc.On("ChangePassword", mock.Anything, id, tt.body["old_password"], tt.body["new_password"]).
				Return(tt.result, tt.err)
			h := NewAccountHandler(svc, nil)

			req := httptest.NewRequest(http.MethodPatch, "/api/users/password/"+id+"/id", jsonBody(t, tt.body))
			req = withURLParams(req, map[string]string{"id": id})
			rr := httptest.NewRecorder()
			h.ChangePassword(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assertNoSecrets(t, rr)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rr).Error)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	user := newTestUser()
	expires := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)

	svc := &mocks.AccountService{}
	svc.On("Authenticate", mock.Anything, "ruan@AAA", "pw").Return(&service.AuthResult{
		User:      user.Public(),
		Token:     "signed.jwt.token",
		ExpiresAt: expires,
	}, nil)
	svc.On("Authenticate", mock.Anything, "ruan@AAA", "wrong").Return(nil, service.NewUnauthorizedError())
	svc.On("Authenticate", mock.Anything, "nobody@AAA", "pw").Return(nil, service.NewNotFoundError(nil))
	h := NewAccountHandler(svc, nil)

	t.Run("success", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/users/login",
			jsonBody(t, LoginRequest{Email: "ruan@AAA", Password: "pw"})))

		require.Equal(t, http.StatusOK, rr.Code)
		assertNoSecrets(t, rr)

		var got LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "signed.jwt.token", got.Token)
		assert.Equal(t, user.ID, got.User.ID)
		assert.Equal(t, "2026-06-01T15:00:00Z", got.ExpiresAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/users/login",
			jsonBody(t, LoginRequest{Email: "ruan@AAA", Password: "wrong"})))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthorized", decodeError(t, rr).Error)
	})

	t.Run("unknown email", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/users/login",
			jsonBody(t, LoginRequest{Email: "nobody@AAA", Password: "pw"})))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestMe(t *testing.T) {
	user := newTestUser()
	svc := &mocks.AccountService{}
	svc.On("GetByID", mock.Anything, user.ID.String()).Return(user, nil)
	h := NewAccountHandler(svc, nil)

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req = req.WithContext(shared.WithUserID(req.Context(), user.ID))
		rr := httptest.NewRecorder()
		h.Me(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assertNoSecrets(t, rr)
	})

	t.Run("no user in context", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Me(rr, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
