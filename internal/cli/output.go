package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Output handles formatting output
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter. A nil writer means stdout.
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case AdminSession:
		o.printAdminSession(v)
	case AccountList:
		o.printAccountList(v)
	case GameState:
		o.printGameState(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

// AdminSession response type
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Account response type (matches API)
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountList response type
type AccountList struct {
	Accounts []Account `json:"accounts"`
}

// GameState response type
type GameState struct {
	State       string    `json:"state"`
	PlayerCount int       `json:"player_count"`
	Players     []string  `json:"players"`
	SessionID   string    `json:"session_id,omitempty"`
	GuessCount  int       `json:"guess_count"`
	StartedAt   time.Time `json:"started_at,omitzero"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
}

func (o *Output) printAdminSession(s AdminSession) {
	fmt.Fprintln(o.w, "Admin session created")
	fmt.Fprintf(o.w, "Expires: %s\n", s.ExpiresAt.Local().Format(time.DateTime))
}

func (o *Output) printAccountList(l AccountList) {
	fmt.Fprintf(o.w, "Accounts (%d):\n", len(l.Accounts))
	for _, a := range l.Accounts {
		fmt.Fprintf(o.w, "  %-4d %-20s %-6s %s\n", a.ID, a.Username, a.Role, a.CreatedAt.Local().Format(time.DateTime))
	}
}

func (o *Output) printGameState(g GameState) {
	fmt.Fprintf(o.w, "State: %s\n", g.State)
	fmt.Fprintf(o.w, "Players (%d): %s\n", g.PlayerCount, strings.Join(g.Players, ", "))
	if g.SessionID != "" {
		fmt.Fprintf(o.w, "Session: %s\n", g.SessionID)
		fmt.Fprintf(o.w, "Guesses: %d\n", g.GuessCount)
	}
	if !g.StartedAt.IsZero() {
		fmt.Fprintf(o.w, "Started: %s\n", g.StartedAt.Local().Format(time.DateTime))
	}
}
