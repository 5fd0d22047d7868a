package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/web/ws"
)

const writeWait = 10 * time.Second

// GameConn is a player's connection to the notification channel
type GameConn struct {
	conn *websocket.Conn
}

// DialGame opens the notification channel
func DialGame(ctx context.Context, url string) (*GameConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &GameConn{conn: conn}, nil
}

// Send writes one event frame
func (g *GameConn) Send(event model.EventType, payload any) error {
	env := ws.Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		env.Data = data
	}
	_ = g.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return g.conn.WriteJSON(env)
}

// Next blocks until the server pushes an event
func (g *GameConn) Next() (ws.Envelope, error) {
	var env ws.Envelope
	err := g.conn.ReadJSON(&env)
	return env, err
}

// Close announces the disconnect and closes the socket
func (g *GameConn) Close() error {
	_ = g.Send(model.EventDisconnect, nil)
	_ = g.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return g.conn.Close()
}

// playOptions configures one play or register run
type playOptions struct {
	URL      string
	Username string
	Password string
	// Guess is submitted as soon as the round starts; zero prompts on input
	Guess int
	JSON  bool
}

func newRegisterCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}

			opts := playOptions{
				URL:      cfg.WebSocketURL(),
				Username: user,
				Password: pass,
				JSON:     cfg.Output == "json",
			}
			return runRegister(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayCmd() *cobra.Command {
	var user, pass string
	var guess int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Log in and play a round",
		Long: `Log in over the WebSocket channel and wait for an opponent.

Once the round starts you are prompted for a guess between 1 and 50, unless
--guess was given. The command exits when the round is decided or abandoned.

Press Ctrl+C to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := playOptions{
				URL:      cfg.WebSocketURL(),
				Username: user,
				Password: pass,
				Guess:    guess,
				JSON:     cfg.Output == "json",
			}
			return runPlay(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	cmd.Flags().IntVar(&guess, "guess", 0, "Submit this guess without prompting")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func runRegister(ctx context.Context, opts playOptions, out io.Writer) error {
	g, err := DialGame(ctx, opts.URL)
	if err != nil {
		return err
	}
	defer func() { _ = g.Close() }()

	creds := model.CredentialsPayload{Username: opts.Username, Password: opts.Password}
	if err := g.Send(model.EventRegister, creds); err != nil {
		return err
	}

	for {
		env, err := g.Next()
		if err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}
		switch env.Event {
		case model.EventRegistrationSuccess:
			printEvent(out, env, opts.JSON)
			return nil
		case model.EventRegistrationError:
			return errors.New(messageOf(env))
		}
	}
}

func runPlay(ctx context.Context, opts playOptions, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, err := DialGame(ctx, opts.URL)
	if err != nil {
		return err
	}
	defer func() { _ = g.Close() }()

	events := make(chan ws.Envelope)
	readErr := make(chan error, 1)
	go func() {
		for {
			env, err := g.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case events <- env:
			case <-ctx.Done():
				return
			}
		}
	}()

	var lines chan string
	if opts.Guess == 0 {
		lines = make(chan string)
		go scanLines(ctx, in, lines)
	}

	creds := model.CredentialsPayload{Username: opts.Username, Password: opts.Password}
	if err := g.Send(model.EventLogin, creds); err != nil {
		return err
	}

	// Input is only consumed while the round waits on our guess
	prompting := false
	for {
		var input <-chan string
		if prompting {
			input = lines
		}

		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			return fmt.Errorf("connection lost: %w", err)

		case line, ok := <-input:
			if !ok {
				return errors.New("input closed before a guess was made")
			}
			n, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				fmt.Fprintln(out, "Please enter a whole number between 1 and 50.")
				fmt.Fprint(out, "Your guess: ")
				continue
			}
			prompting = false
			if err := g.Send(model.EventGuess, map[string]int{"guess": n}); err != nil {
				return err
			}

		case env := <-events:
			printEvent(out, env, opts.JSON)

			switch env.Event {
			case model.EventLoginError:
				return errors.New(messageOf(env))
			case model.EventGameStarted:
				if opts.Guess != 0 {
					if err := g.Send(model.EventGuess, map[string]int{"guess": opts.Guess}); err != nil {
						return err
					}
					continue
				}
				prompting = true
				fmt.Fprint(out, "Your guess: ")
			case model.EventGuessError:
				if opts.Guess != 0 {
					return errors.New(messageOf(env))
				}
				prompting = true
				fmt.Fprint(out, "Your guess: ")
			case model.EventGameResult, model.EventGameAbandoned:
				return nil
			}
		}
	}
}

func scanLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// messageOf pulls the message field out of an event payload
func messageOf(env ws.Envelope) string {
	var p model.MessagePayload
	if err := json.Unmarshal(env.Data, &p); err != nil || p.Message == "" {
		return string(env.Event)
	}
	return p.Message
}

// printEvent renders a server event as a line of text, or as the raw frame
// in JSON mode
func printEvent(out io.Writer, env ws.Envelope, asJSON bool) {
	if asJSON {
		data, _ := json.Marshal(env)
		fmt.Fprintln(out, string(data))
		return
	}

	switch env.Event {
	case model.EventPlayerCount:
		var p model.PlayerCountPayload
		_ = json.Unmarshal(env.Data, &p)
		fmt.Fprintf(out, "Players online: %d\n", p.Count)
	case model.EventGameStarted:
		var p model.GameStartedPayload
		_ = json.Unmarshal(env.Data, &p)
		fmt.Fprintf(out, "Game started against %s. Guess a number between 1 and 50.\n", p.Opponent)
	case model.EventGuessSubmitted:
		var p model.GuessRecord
		_ = json.Unmarshal(env.Data, &p)
		fmt.Fprintln(out, p.Message)
	case model.EventGameResult:
		var p model.Result
		_ = json.Unmarshal(env.Data, &p)
		fmt.Fprintln(out, p.Message)
	case model.EventGameAbandoned:
		var p model.GameAbandonedPayload
		_ = json.Unmarshal(env.Data, &p)
		fmt.Fprintf(out, "Game abandoned: %s\n", p.Reason)
	default:
		fmt.Fprintln(out, messageOf(env))
	}
}
