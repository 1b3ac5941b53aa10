package simcat

// AuthRequest is the login payload.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is what the backend returns on login. The user id is not
// included; callers resolve it through the profile endpoint.
type AuthResponse struct {
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
	Role        string `json:"role"`
}

// ChangePasswordRequest is the change-password payload.
type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}
