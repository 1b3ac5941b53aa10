package simcat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ukmcatur/caturbot/internal/domain"
)

func TestLoginAndProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			require.Equal(t, http.MethodPost, r.Method)
			var req AuthRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "budi@club.id", req.Email)
			json.NewEncoder(w).Encode(AuthResponse{
				Email:       req.Email,
				AccessToken: "tok-123",
				Message:     "Login berhasil",
				Role:        "MEMBER",
			})
		case "/api/users/profile":
			require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(domain.User{ID: 7, Name: "Budi", Email: "budi@club.id", Role: domain.RoleMember})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	auth, err := c.Login("budi@club.id", "rahasia")
	require.NoError(t, err)
	require.Equal(t, "tok-123", auth.AccessToken)
	require.Equal(t, "MEMBER", auth.Role)

	user, err := c.GetProfile(auth.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, "Budi", user.Name)
}

func TestGetAllSchedules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/schedules/getall", r.URL.Path)
		// public endpoint, no token expected
		require.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]domain.Schedule{
			{ID: 1, Title: "Latihan Rutin", DateTime: "15 Desember 2025 • 18:00", ActivityType: "LATIHAN", MaxParticipants: 20},
		})
	}))
	defer srv.Close()

	schedules, err := NewClient(srv.URL).GetAllSchedules()
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	require.Equal(t, "Latihan Rutin", schedules[0].Title)
	require.Equal(t, 20, schedules[0].MaxParticipants)
}

func TestRegisterParticipation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/participations/register", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var p domain.Participation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		require.Equal(t, domain.StatusRegistered, p.Status)

		p.ID = 42
		json.NewEncoder(w).Encode(p)
	}))
	defer srv.Close()

	created, err := NewClient(srv.URL).RegisterParticipation("tok", &domain.Participation{
		UserID:           7,
		ScheduleID:       1,
		RegistrationDate: "2025-06-01T10:00:00",
		Status:           domain.StatusRegistered,
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), created.ID)
}

func TestErrorStatusIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token tidak valid"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetProfile("expired")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
	require.Contains(t, err.Error(), "Token tidak valid")
}
