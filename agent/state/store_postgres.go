package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// TranscriptRecord is the bun model backing PostgresStore.
type TranscriptRecord struct {
	bun.BaseModel `bun:"table:transcripts,alias:t"`

	SessionID string    `bun:"session_id,pk"`
	Payload   []byte    `bun:"payload,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PostgresStore persists transcripts in Postgres. It implements the same
// Store contract as the Upstash REST store for deployments that already run
// a relational database.
type PostgresStore struct {
	db *bun.DB
}

type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &PostgresStore{db: db}, nil
}

// EnsureSchema creates the transcripts table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*TranscriptRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create transcripts table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	rec := new(TranscriptRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("session_id = ?", sessionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	return unmarshalTranscript(rec.Payload)
}

func (s *PostgresStore) Save(ctx context.Context, sessionID string, msgs []*schema.Message) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	payload, err := marshalTranscript(msgs)
	if err != nil {
		return err
	}

	rec := &TranscriptRecord{
		SessionID: sessionID,
		Payload:   payload,
		UpdatedAt: time.Now().UTC(),
	}

	_, err = s.db.NewInsert().
		Model(rec).
		On("CONFLICT (session_id) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	_, err := s.db.NewDelete().
		Model((*TranscriptRecord)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
