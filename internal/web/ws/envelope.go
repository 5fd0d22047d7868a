package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
)

// Envelope is the frame exchanged in both directions:
// {"event": "<name>", "data": <payload>}
type Envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// GuessPayload is the body of a guess event.
// Guess may be a JSON number or a numeric string.
type GuessPayload struct {
	Guess json.RawMessage `json:"guess"`
}

var errInvalidGuess = errors.New("guess is not a whole number")

// encode builds an outbound frame
func encode(event model.EventType, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// decode parses an inbound frame
func decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, err
	}
	if env.Event == "" {
		return Envelope{}, errors.New("missing event name")
	}
	return env, nil
}

func decodeCredentials(data json.RawMessage) (model.CredentialsPayload, error) {
	var creds model.CredentialsPayload
	if len(data) == 0 {
		return creds, errors.New("missing credentials")
	}
	err := json.Unmarshal(data, &creds)
	return creds, err
}

// parseGuess reads the guess field. Range checks belong to the coordinator.
func parseGuess(data json.RawMessage) (int, error) {
	var payload GuessPayload
	if len(data) == 0 {
		return 0, errInvalidGuess
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, errInvalidGuess
	}

	dec := json.NewDecoder(bytes.NewReader(payload.Guess))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, errInvalidGuess
	}

	var text string
	switch g := v.(type) {
	case json.Number:
		text = g.String()
	case string:
		text = strings.TrimSpace(g)
	default:
		return 0, errInvalidGuess
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, errInvalidGuess
	}
	return n, nil
}
