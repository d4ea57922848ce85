package invite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/internal/test_utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (fixture, *mux.Router) {
	f := setupServiceTest(t)
	handler := NewHandler(f.service, "https://birthdays.example.com/")
	r := mux.NewRouter()
	r.HandleFunc("/api/invite", handler.Create).Methods("POST")
	r.HandleFunc("/api/invite/submit", handler.Submit).Methods("POST")
	r.HandleFunc("/api/invite/{code}", handler.Check).Methods("GET")
	return f, r
}

func post(r http.Handler, ctx context.Context, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createInvite(t *testing.T, r http.Handler, ctx context.Context) InviteResponse {
	w := post(r, ctx, "/api/invite", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp InviteResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHandler_Create(t *testing.T) {
	t.Run("should return invite and subscription urls", func(t *testing.T) {
		_, r := setupHandlerTest(t)
		ctx, _ := test_utils.ContextWithUser("u1@example.com")

		resp := createInvite(t, r, ctx)

		assert.Len(t, resp.Code, CodeLength)
		assert.Equal(t, "https://birthdays.example.com/invite/"+resp.Code, resp.InviteUrl)
		assert.Equal(t, "webcal://birthdays.example.com/api/calendar?token="+resp.Code, resp.SubscriptionUrl)
		assert.Equal(t, resp, createInvite(t, r, ctx))
	})

	t.Run("should return unauthorized without user", func(t *testing.T) {
		_, r := setupHandlerTest(t)

		w := post(r, context.Background(), "/api/invite", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_Check(t *testing.T) {
	_, r := setupHandlerTest(t)
	ctx, _ := test_utils.ContextWithUser("u1@example.com")
	invite := createInvite(t, r, ctx)

	t.Run("should accept known code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/invite/"+invite.Code, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"valid":true}`, w.Body.String())
	})

	t.Run("should reject unknown code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/invite/ZZZZZZZZ", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_Submit(t *testing.T) {
	t.Run("should add birthday for invite owner", func(t *testing.T) {
		// given
		f, r := setupHandlerTest(t)
		ownerCtx, owner := test_utils.ContextWithUser("owner@example.com")
		invite := createInvite(t, r, ownerCtx)

		// when
		w := post(r, context.Background(), "/api/invite/submit", SubmitRequest{
			Code:        invite.Code,
			Name:        "Ana",
			DateOfBirth: "1990-04-12",
			Notes:       "from the party",
		})

		// then
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
		stored, err := f.birthdays.GetAll(context.Background(), owner.Id)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "Ana", stored[0].Name)
		assert.Equal(t, "from the party", stored[0].Notes)
	})

	t.Run("should reject invalid code", func(t *testing.T) {
		_, r := setupHandlerTest(t)

		w := post(r, context.Background(), "/api/invite/submit", SubmitRequest{
			Code:        "ZZZZZZZZ",
			Name:        "Ana",
			DateOfBirth: "1990-04-12",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Invalid invite code.", resp.Error)
	})

	t.Run("should reject invalid birthday data", func(t *testing.T) {
		_, r := setupHandlerTest(t)
		ownerCtx, _ := test_utils.ContextWithUser("owner@example.com")
		invite := createInvite(t, r, ownerCtx)

		w := post(r, context.Background(), "/api/invite/submit", SubmitRequest{
			Code:        invite.Code,
			Name:        "",
			DateOfBirth: "1990-13-45",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "date_of_birth")
		assert.Contains(t, w.Body.String(), `"name"`)
	})

	t.Run("should reject blank name and year zero before saving", func(t *testing.T) {
		f, r := setupHandlerTest(t)
		ownerCtx, owner := test_utils.ContextWithUser("owner@example.com")
		invite := createInvite(t, r, ownerCtx)

		w := post(r, context.Background(), "/api/invite/submit", SubmitRequest{
			Code:        invite.Code,
			Name:        " \t ",
			DateOfBirth: "0000-06-15",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "notblank")
		assert.Contains(t, w.Body.String(), "calendardate")
		stored, err := f.birthdays.GetAll(context.Background(), owner.Id)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("should reject malformed body", func(t *testing.T) {
		_, r := setupHandlerTest(t)
		req := httptest.NewRequest(http.MethodPost, "/api/invite/submit", strings.NewReader("{"))
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should report insert failure", func(t *testing.T) {
		f, r := setupHandlerTest(t)
		ownerCtx, _ := test_utils.ContextWithUser("owner@example.com")
		invite := createInvite(t, r, ownerCtx)
		f.birthdays.FailWith(errors.New("insert failed"))

		w := post(r, context.Background(), "/api/invite/submit", SubmitRequest{
			Code:        invite.Code,
			Name:        "Ana",
			DateOfBirth: "1990-04-12",
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Failed to save birthday.", resp.Error)
	})
}

func TestSubscriptionUrl(t *testing.T) {
	assert.Equal(t, "webcal://localhost:3000/api/calendar?token=ABCD1234", SubscriptionUrl("http://localhost:3000", "ABCD1234"))
	assert.Equal(t, "webcal://example.com/birthdays/api/calendar?token=ABCD1234", SubscriptionUrl("https://example.com/birthdays/", "ABCD1234"))
}
