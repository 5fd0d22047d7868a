package game

import (
	"errors"
	"fmt"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/random"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
)

// DetermineResult picks the winner of a complete session.
// The guess closest to the target wins; an exact tie is settled by rng.
func DetermineResult(session *model.Session, rng random.Random) model.Result {
	first, second := session.Guesses[0], session.Guesses[1]
	d1 := distance(first.Guess, session.Target)
	d2 := distance(second.Guess, session.Target)

	winner, loser := first, second
	tie := d1 == d2
	switch {
	case d2 < d1:
		winner, loser = second, first
	case tie && rng.Intn(2) == 1:
		winner, loser = second, first
	}

	guesses := make([]model.GuessRecord, len(session.Guesses))
	copy(guesses, session.Guesses)

	message := fmt.Sprintf("%s wins! The correct number was %d. %s guessed %d, while %s guessed %d.",
		winner.Username, session.Target, winner.Username, winner.Guess, loser.Username, loser.Guess)
	if tie {
		message += " It was a tie, so the winner was chosen at random."
	}

	return model.Result{
		SessionID:   session.ID,
		Target:      session.Target,
		Winner:      winner.Username,
		Loser:       loser.Username,
		WinnerGuess: winner.Guess,
		LoserGuess:  loser.Guess,
		Tie:         tie,
		Guesses:     guesses,
		Message:     message,
	}
}

func distance(guess, target int) int {
	if guess > target {
		return guess - target
	}
	return target - guess
}

// UserMessage maps a coordinator error to the text shown to players
func UserMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrGuessOutOfRange):
		return fmt.Sprintf("Guess must be between %d and %d.", model.MinGuess, model.MaxGuess)
	case errors.Is(err, model.ErrNoActiveSession):
		return "There is no game in progress."
	case errors.Is(err, model.ErrNotParticipant):
		return "You are not playing in the current game."
	case errors.Is(err, model.ErrAlreadyGuessed):
		return "You have already submitted a guess."
	case errors.Is(err, model.ErrAlreadyLoggedIn):
		return "You are already logged in."
	case errors.Is(err, model.ErrGameInProgress):
		return "A game is in progress. Please try again when it finishes."
	default:
		return "Something went wrong, please try again."
	}
}
