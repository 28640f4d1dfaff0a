// Package chat runs the interactive read-eval-print loop over an
// orchestrator and an optional transcript store.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	policyx "github.com/opsloop-ai/opsloop/agent/policy"
	statex "github.com/opsloop-ai/opsloop/agent/state"
	logx "github.com/opsloop-ai/opsloop/pkg/logger"
)

// Handler processes one user turn against retained history.
type Handler interface {
	HandleMessage(ctx context.Context, history []*schema.Message, text string) (string, []*schema.Message, error)
}

// exitKeywords terminate the loop on exact match, case-insensitively, without
// reaching the handler.
var exitKeywords = map[string]struct{}{
	"exit": {},
	"quit": {},
	"bye":  {},
}

const (
	goodbyeText = "Goodbye!"

	grantedText        = "Unlimited access granted. File deletion remains restricted for safety."
	alreadyGrantedText = "You already have unlimited access."
	revokedText        = "Access revoked."
)

type Option func(*Loop)

// WithStore persists the transcript after every completed turn.
func WithStore(store statex.Store) Option {
	return func(l *Loop) { l.store = store }
}

// WithSessionID overrides the generated session id, letting a caller resume
// a stored transcript.
func WithSessionID(id string) Option {
	return func(l *Loop) { l.sessionID = id }
}

// WithBanner prints a welcome message before the first prompt.
func WithBanner(banner string) Option {
	return func(l *Loop) { l.banner = banner }
}

// WithPolicySession enables the "grant access" / "revoke access" commands,
// which toggle elevation on the given session without reaching the agent.
func WithPolicySession(session *policyx.Session) Option {
	return func(l *Loop) { l.session = session }
}

type Loop struct {
	in      io.Reader
	out     io.Writer
	handler Handler

	store     statex.Store
	session   *policyx.Session
	sessionID string
	banner    string
	log       zerolog.Logger
}

func NewLoop(in io.Reader, out io.Writer, handler Handler, opts ...Option) (*Loop, error) {
	if in == nil || out == nil {
		return nil, errors.New("reader and writer are required")
	}
	if handler == nil {
		return nil, errors.New("message handler is required")
	}

	l := &Loop{
		in:        in,
		out:       out,
		handler:   handler,
		sessionID: uuid.NewString(),
		log:       logx.Component("chat"),
	}
	for _, opt := range opts {
		opt(l)
	}
	if strings.TrimSpace(l.sessionID) == "" {
		return nil, errors.New("session id must not be blank")
	}
	return l, nil
}

func (l *Loop) SessionID() string { return l.sessionID }

// Run reads lines until an exit keyword or EOF. Handler errors are printed
// and the loop keeps going; only a read failure or context cancellation ends
// it with an error.
func (l *Loop) Run(ctx context.Context) error {
	history, err := l.loadHistory(ctx)
	if err != nil {
		return err
	}

	if l.banner != "" {
		fmt.Fprintln(l.out, l.banner)
	}

	scanner := bufio.NewScanner(l.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(l.out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(l.out, goodbyeText)
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, ok := exitKeywords[strings.ToLower(line)]; ok {
			fmt.Fprintln(l.out, goodbyeText)
			return nil
		}
		if l.handleAccessCommand(line) {
			continue
		}

		reply, updated, err := l.handler.HandleMessage(ctx, history, line)
		if err != nil {
			l.log.Error().Err(err).Msg("turn failed")
			fmt.Fprintf(l.out, "error: %v\n", err)
			continue
		}

		history = updated
		fmt.Fprintln(l.out, reply)
		l.saveHistory(ctx, history)
	}
}

// handleAccessCommand intercepts the elevation commands before the line can
// reach the handler. Returns true when the line was consumed.
func (l *Loop) handleAccessCommand(line string) bool {
	if l.session == nil {
		return false
	}
	switch strings.ToLower(line) {
	case "grant access":
		if l.session.Elevated() {
			fmt.Fprintln(l.out, alreadyGrantedText)
			return true
		}
		l.session.Grant()
		fmt.Fprintln(l.out, grantedText)
		return true
	case "revoke access":
		l.session.Revoke()
		fmt.Fprintln(l.out, revokedText)
		return true
	}
	return false
}

func (l *Loop) loadHistory(ctx context.Context) ([]*schema.Message, error) {
	if l.store == nil {
		return nil, nil
	}
	msgs, err := l.store.Load(ctx, l.sessionID)
	if err != nil {
		if errors.Is(err, statex.ErrTranscriptNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	return msgs, nil
}

func (l *Loop) saveHistory(ctx context.Context, history []*schema.Message) {
	if l.store == nil {
		return
	}
	if err := l.store.Save(ctx, l.sessionID, history); err != nil {
		l.log.Warn().Err(err).Str("session_id", l.sessionID).Msg("transcript save failed")
	}
}
