package request

// AdminLoginRequest is the request body for admin login, both the session
// endpoint and the legacy /admin endpoint
type AdminLoginRequest struct {
	Password string `json:"password"`
}
