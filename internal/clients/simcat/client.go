package simcat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ukmcatur/caturbot/internal/domain"
)

// Client is the HTTP client for the SIMCAT backend. Endpoints that need
// authentication take the bearer token per call: the token belongs to a
// chat session, not to the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new SIMCAT API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest performs an HTTP request, attaching the bearer token when
// one is given.
func (c *Client) doRequest(method, path, token string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// === Auth ===

// Register creates a new backend account.
func (c *Client) Register(user *domain.User) (*domain.User, error) {
	body, err := c.doRequest("POST", "/register", "", user)
	if err != nil {
		return nil, err
	}

	var created domain.User
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &created, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(email, password string) (*AuthResponse, error) {
	body, err := c.doRequest("POST", "/login", "", AuthRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, fmt.Errorf("unmarshal auth response: %w", err)
	}
	return &auth, nil
}

// === Users ===

// GetProfile returns the account behind the token.
func (c *Client) GetProfile(token string) (*domain.User, error) {
	body, err := c.doRequest("GET", "/api/users/profile", token, nil)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates the account behind the token.
func (c *Client) UpdateProfile(token string, user *domain.User) (*domain.User, error) {
	body, err := c.doRequest("PUT", "/api/users/profile", token, user)
	if err != nil {
		return nil, err
	}

	var updated domain.User
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &updated, nil
}

// ChangePassword changes the account password.
func (c *Client) ChangePassword(token string, req *ChangePasswordRequest) error {
	_, err := c.doRequest("PUT", "/api/users/change-password", token, req)
	return err
}

// DeleteAccount removes the account behind the token.
func (c *Client) DeleteAccount(token string) error {
	_, err := c.doRequest("DELETE", "/api/users/delete-account", token, nil)
	return err
}

// === Equipment ===

// GetAllEquipment returns the full equipment inventory. Public endpoint.
func (c *Client) GetAllEquipment() ([]*domain.Equipment, error) {
	body, err := c.doRequest("GET", "/api/equipment/getall", "", nil)
	if err != nil {
		return nil, err
	}

	var equipment []*domain.Equipment
	if err := json.Unmarshal(body, &equipment); err != nil {
		return nil, fmt.Errorf("unmarshal equipment: %w", err)
	}
	return equipment, nil
}

// CreateEquipment adds a new equipment record. Admin only.
func (c *Client) CreateEquipment(token string, e *domain.Equipment) error {
	_, err := c.doRequest("POST", "/api/equipment/create", token, e)
	return err
}

// UpdateEquipment updates an equipment record. Admin only.
func (c *Client) UpdateEquipment(token string, id int64, e *domain.Equipment) error {
	_, err := c.doRequest("PUT", fmt.Sprintf("/api/equipment/%d", id), token, e)
	return err
}

// DeleteEquipment removes an equipment record. Admin only.
func (c *Client) DeleteEquipment(token string, id int64) error {
	_, err := c.doRequest("DELETE", fmt.Sprintf("/api/equipment/%d", id), token, nil)
	return err
}

// === Borrows ===

// BorrowEquipment opens a loan.
func (c *Client) BorrowEquipment(token string, borrow *domain.Borrow) (*domain.Borrow, error) {
	body, err := c.doRequest("POST", "/api/borrows/borrow", token, borrow)
	if err != nil {
		return nil, err
	}

	var created domain.Borrow
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("unmarshal borrow: %w", err)
	}
	return &created, nil
}

// ReturnEquipment closes a loan.
func (c *Client) ReturnEquipment(token string, id int64) (*domain.Borrow, error) {
	body, err := c.doRequest("POST", fmt.Sprintf("/api/borrows/return/%d", id), token, nil)
	if err != nil {
		return nil, err
	}

	var returned domain.Borrow
	if err := json.Unmarshal(body, &returned); err != nil {
		return nil, fmt.Errorf("unmarshal borrow: %w", err)
	}
	return &returned, nil
}

// GetAllBorrows returns every loan. Admin only.
func (c *Client) GetAllBorrows(token string) ([]*domain.Borrow, error) {
	body, err := c.doRequest("GET", "/api/borrows/getall", token, nil)
	if err != nil {
		return nil, err
	}

	var borrows []*domain.Borrow
	if err := json.Unmarshal(body, &borrows); err != nil {
		return nil, fmt.Errorf("unmarshal borrows: %w", err)
	}
	return borrows, nil
}

// GetBorrowsByUser returns one member's loans.
func (c *Client) GetBorrowsByUser(token string, userID int64) ([]*domain.Borrow, error) {
	body, err := c.doRequest("GET", fmt.Sprintf("/api/borrows/user/%d", userID), token, nil)
	if err != nil {
		return nil, err
	}

	var borrows []*domain.Borrow
	if err := json.Unmarshal(body, &borrows); err != nil {
		return nil, fmt.Errorf("unmarshal borrows: %w", err)
	}
	return borrows, nil
}

// === Schedules ===

// GetAllSchedules returns every scheduled activity. Public endpoint.
func (c *Client) GetAllSchedules() ([]*domain.Schedule, error) {
	body, err := c.doRequest("GET", "/api/schedules/getall", "", nil)
	if err != nil {
		return nil, err
	}

	var schedules []*domain.Schedule
	if err := json.Unmarshal(body, &schedules); err != nil {
		return nil, fmt.Errorf("unmarshal schedules: %w", err)
	}
	return schedules, nil
}

// CreateSchedule adds a new activity. Admin only.
func (c *Client) CreateSchedule(token string, s *domain.Schedule) (*domain.Schedule, error) {
	body, err := c.doRequest("POST", "/api/schedules/create", token, s)
	if err != nil {
		return nil, err
	}

	var created domain.Schedule
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("unmarshal schedule: %w", err)
	}
	return &created, nil
}

// UpdateSchedule updates an activity. Admin only.
func (c *Client) UpdateSchedule(token string, id int64, s *domain.Schedule) error {
	_, err := c.doRequest("PUT", fmt.Sprintf("/api/schedules/%d", id), token, s)
	return err
}

// DeleteSchedule removes an activity. Admin only.
func (c *Client) DeleteSchedule(token string, id int64) error {
	_, err := c.doRequest("DELETE", fmt.Sprintf("/api/schedules/delete/%d", id), token, nil)
	return err
}

// === Participations ===

// RegisterParticipation signs the user up for an activity.
func (c *Client) RegisterParticipation(token string, p *domain.Participation) (*domain.Participation, error) {
	body, err := c.doRequest("POST", "/api/participations/register", token, p)
	if err != nil {
		return nil, err
	}

	var created domain.Participation
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("unmarshal participation: %w", err)
	}
	return &created, nil
}

// CancelParticipation flips a registration to CANCELLED.
func (c *Client) CancelParticipation(token string, id int64, p *domain.Participation) error {
	_, err := c.doRequest("PUT", fmt.Sprintf("/api/participations/cancel/%d", id), token, p)
	return err
}

// GetParticipationsBySchedule returns all registrations for an activity.
func (c *Client) GetParticipationsBySchedule(token string, scheduleID int64) ([]*domain.Participation, error) {
	body, err := c.doRequest("GET", fmt.Sprintf("/api/participations/schedule/%d", scheduleID), token, nil)
	if err != nil {
		return nil, err
	}

	var participations []*domain.Participation
	if err := json.Unmarshal(body, &participations); err != nil {
		return nil, fmt.Errorf("unmarshal participations: %w", err)
	}
	return participations, nil
}

// GetParticipationsByUser returns one member's registrations.
func (c *Client) GetParticipationsByUser(token string, userID int64) ([]*domain.Participation, error) {
	body, err := c.doRequest("GET", fmt.Sprintf("/api/participations/user/%d", userID), token, nil)
	if err != nil {
		return nil, err
	}

	var participations []*domain.Participation
	if err := json.Unmarshal(body, &participations); err != nil {
		return nil, fmt.Errorf("unmarshal participations: %w", err)
	}
	return participations, nil
}
