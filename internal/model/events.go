package model

// EventType names an event on the notification channel
type EventType string

const (
	// Client -> server
	EventRegister   EventType = "register"
	EventLogin      EventType = "login"
	EventGuess      EventType = "guess"
	EventDisconnect EventType = "disconnect"

	// Server -> client
	EventRegistrationSuccess EventType = "registration_success"
	EventRegistrationError   EventType = "registration_error"
	EventLoginSuccess        EventType = "login_success"
	EventLoginError          EventType = "login_error"
	EventWaitingRoom         EventType = "waiting_room"
	EventPlayerCount         EventType = "player_count"
	EventGameStarted         EventType = "game_started"
	EventGuessSubmitted      EventType = "guess_submitted"
	EventGuessError          EventType = "guess_error"
	EventGameResult          EventType = "game_result"
	EventGameAbandoned       EventType = "game_abandoned"
)

// CredentialsPayload is sent by clients with register and login
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegistrationSuccessPayload is sent after a successful registration
type RegistrationSuccessPayload struct {
	Message string `json:"message"`
}

// LoginSuccessPayload is sent after a successful login
type LoginSuccessPayload struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Message  string `json:"message"`
}

// PlayerCountPayload carries the registry size
type PlayerCountPayload struct {
	Count int `json:"count"`
}

// GameStartedPayload is pushed individually to each participant
type GameStartedPayload struct {
	SessionID SessionID `json:"session_id"`
	Username  string    `json:"username"`
	Opponent  string    `json:"opponent"`
}

// GameAbandonedPayload is pushed to participants of a timed out session
type GameAbandonedPayload struct {
	SessionID SessionID `json:"session_id"`
	Reason    string    `json:"reason"`
}

// MessagePayload carries an informational message
type MessagePayload struct {
	Message string `json:"message"`
}

// ErrorPayload carries a user-facing error message
type ErrorPayload struct {
	Message string `json:"message"`
}
