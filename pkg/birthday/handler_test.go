package birthday

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/birthdayreminder/birthdayreminder/internal/event_bus"
	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/internal/test_utils"
	"github.com/birthdayreminder/birthdayreminder/internal/utils"
	"github.com/birthdayreminder/birthdayreminder/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, context.Context) {
	clock := utils.NewMockClock(time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC))
	handler := NewHandler(NewService(NewRepositoryStub(), event_bus.NewEventBus(), clock))
	r := mux.NewRouter()
	r.HandleFunc("/api/birthday", handler.List).Methods("GET")
	r.HandleFunc("/api/birthday", handler.Create).Methods("POST")
	r.HandleFunc("/api/birthday/upcoming", handler.Upcoming).Methods("GET")
	r.HandleFunc("/api/birthday/{id}", handler.Get).Methods("GET")
	r.HandleFunc("/api/birthday/{id}", handler.Update).Methods("PUT")
	r.HandleFunc("/api/birthday/{id}", handler.Delete).Methods("DELETE")
	ctx, _ := test_utils.ContextWithUser("u1@example.com")
	return r, ctx
}

func doRequest(r http.Handler, ctx context.Context, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBirthday(t *testing.T, r http.Handler, ctx context.Context, req BirthdayRequest) BirthdayDTO {
	w := doRequest(r, ctx, http.MethodPost, "/api/birthday", req)
	require.Equal(t, http.StatusCreated, w.Code)
	var dto BirthdayDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	return dto
}

func TestHandler_Create(t *testing.T) {
	t.Run("should create birthday", func(t *testing.T) {
		r, ctx := setupHandlerTest(t)

		dto := createBirthday(t, r, ctx, BirthdayRequest{Name: "Ana", DateOfBirth: "1990-04-12", Notes: "likes tea"})

		assert.NotEmpty(t, dto.Id)
		assert.Equal(t, "Ana", dto.Name)
		assert.Equal(t, "1990-04-12", dto.DateOfBirth)
		assert.Equal(t, "likes tea", dto.Notes)
	})

	t.Run("should reject invalid date with field details", func(t *testing.T) {
		r, ctx := setupHandlerTest(t)

		w := doRequest(r, ctx, http.MethodPost, "/api/birthday", BirthdayRequest{Name: "Ana", DateOfBirth: "12/04/1990"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Error  string `json:"error"`
			Fields []struct {
				Field string `json:"field"`
				Tag   string `json:"tag"`
			} `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Fields, 1)
		assert.Equal(t, "date_of_birth", resp.Fields[0].Field)
	})

	t.Run("should reject missing name", func(t *testing.T) {
		r, ctx := setupHandlerTest(t)

		w := doRequest(r, ctx, http.MethodPost, "/api/birthday", BirthdayRequest{DateOfBirth: "1990-04-12"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject blank name and year zero", func(t *testing.T) {
		r, ctx := setupHandlerTest(t)

		w := doRequest(r, ctx, http.MethodPost, "/api/birthday", BirthdayRequest{Name: "   ", DateOfBirth: "0000-01-01"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Fields []validation.ValidationError `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Fields, 2)
		assert.Equal(t, "name", resp.Fields[0].Field)
		assert.Equal(t, "notblank", resp.Fields[0].Tag)
		assert.Equal(t, "date_of_birth", resp.Fields[1].Field)
		assert.Equal(t, "calendardate", resp.Fields[1].Tag)
	})

	t.Run("should store trimmed name", func(t *testing.T) {
		r, ctx := setupHandlerTest(t)

		dto := createBirthday(t, r, ctx, BirthdayRequest{Name: "  Ana ", DateOfBirth: "0001-01-01"})

		assert.Equal(t, "Ana", dto.Name)
		assert.Equal(t, "0001-01-01", dto.DateOfBirth)
	})

	t.Run("should reject malformed body", func(t *testing.T) {
		r, ctx := setupHandlerTest(t)
		req := httptest.NewRequest(http.MethodPost, "/api/birthday", strings.NewReader("not json")).WithContext(ctx)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return unauthorized without user", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, context.Background(), http.MethodPost, "/api/birthday", BirthdayRequest{Name: "Ana", DateOfBirth: "1990-04-12"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_ListGetUpdateDelete(t *testing.T) {
	r, ctx := setupHandlerTest(t)
	ana := createBirthday(t, r, ctx, BirthdayRequest{Name: "Ana", DateOfBirth: "1990-04-12"})
	createBirthday(t, r, ctx, BirthdayRequest{Name: "Ben", DateOfBirth: "1985-12-01"})

	t.Run("should list ordered by date of birth", func(t *testing.T) {
		w := doRequest(r, ctx, http.MethodGet, "/api/birthday", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var dtos []BirthdayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
		require.Len(t, dtos, 2)
		assert.Equal(t, "Ben", dtos[0].Name)
		assert.Equal(t, "Ana", dtos[1].Name)
	})

	t.Run("should get by id", func(t *testing.T) {
		w := doRequest(r, ctx, http.MethodGet, "/api/birthday/"+ana.Id, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var dto BirthdayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, ana, dto)
	})

	t.Run("should return not found for unknown and malformed ids", func(t *testing.T) {
		w := doRequest(r, ctx, http.MethodGet, "/api/birthday/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doRequest(r, ctx, http.MethodGet, "/api/birthday/not-an-id", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		var errResp rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
		assert.Equal(t, "Birthday not found", errResp.Error)
	})

	t.Run("should update", func(t *testing.T) {
		w := doRequest(r, ctx, http.MethodPut, "/api/birthday/"+ana.Id, BirthdayRequest{Name: "Ana", DateOfBirth: "1990-04-13", Notes: "moved"})

		require.Equal(t, http.StatusOK, w.Code)
		var dto BirthdayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "1990-04-13", dto.DateOfBirth)
		assert.Equal(t, "moved", dto.Notes)
	})

	t.Run("should list upcoming", func(t *testing.T) {
		w := doRequest(r, ctx, http.MethodGet, "/api/birthday/upcoming?limit=1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var dtos []UpcomingBirthdayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
		require.Len(t, dtos, 1)
		assert.Equal(t, "Ana", dtos[0].Name)
		assert.Equal(t, "2026-04-13", dtos[0].NextOccurrence)
		assert.Equal(t, 3, dtos[0].DaysUntil)
	})

	t.Run("should reject invalid upcoming limit", func(t *testing.T) {
		w := doRequest(r, ctx, http.MethodGet, "/api/birthday/upcoming?limit=zero", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should delete", func(t *testing.T) {
		w := doRequest(r, ctx, http.MethodDelete, "/api/birthday/"+ana.Id, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doRequest(r, ctx, http.MethodGet, "/api/birthday/"+ana.Id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
