// Package profilesql persists the profile session in PostgreSQL, one row per namespace.
package profilesql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/openkcm/profile-session/internal/profile"
)

type Store struct {
	db        *pgxpool.Pool
	namespace string
}

var _ = profile.Store(&Store{})

func NewStore(db *pgxpool.Pool, namespace string) *Store {
	return &Store{
		db:        db,
		namespace: namespace,
	}
}

func (s *Store) LoadProfile(ctx context.Context) (profile.Profile, error) {
	ctx, span := s.start(ctx, "load_profile_sql")
	defer span.End()

	var p profile.Profile
	err := s.db.QueryRow(ctx, `SELECT name, birthdate, location FROM profile_sessions WHERE namespace = $1;`, s.namespace).
		Scan(&p.Name, &p.Birthdate, &p.Location)
	if err := noRowsIsZero(span, err); err != nil {
		return profile.Profile{}, fmt.Errorf("selecting profile: %w", err)
	}

	return p, nil
}

func (s *Store) StoreProfile(ctx context.Context, p profile.Profile) error {
	ctx, span := s.start(ctx, "store_profile_sql")
	defer span.End()

	return s.upsert(ctx, span, `INSERT INTO profile_sessions (namespace, name, birthdate, location) VALUES ($1, $2, $3, $4)
ON CONFLICT (namespace) DO UPDATE SET name = EXCLUDED.name, birthdate = EXCLUDED.birthdate, location = EXCLUDED.location, updated_at = now();`,
		s.namespace, p.Name, p.Birthdate, p.Location)
}

func (s *Store) LoadToken(ctx context.Context) (string, error) {
	ctx, span := s.start(ctx, "load_token_sql")
	defer span.End()

	var token string
	err := s.db.QueryRow(ctx, `SELECT token FROM profile_sessions WHERE namespace = $1;`, s.namespace).Scan(&token)
	if err := noRowsIsZero(span, err); err != nil {
		return "", fmt.Errorf("selecting token: %w", err)
	}

	return token, nil
}

func (s *Store) StoreToken(ctx context.Context, token string) error {
	ctx, span := s.start(ctx, "store_token_sql")
	defer span.End()

	return s.upsert(ctx, span, `INSERT INTO profile_sessions (namespace, token) VALUES ($1, $2)
ON CONFLICT (namespace) DO UPDATE SET token = EXCLUDED.token, updated_at = now();`,
		s.namespace, token)
}

func (s *Store) LoadLastFetchedAt(ctx context.Context) (int64, error) {
	ctx, span := s.start(ctx, "load_last_fetched_at_sql")
	defer span.End()

	var millis int64
	err := s.db.QueryRow(ctx, `SELECT last_fetched_at FROM profile_sessions WHERE namespace = $1;`, s.namespace).Scan(&millis)
	if err := noRowsIsZero(span, err); err != nil {
		return 0, fmt.Errorf("selecting last fetch time: %w", err)
	}

	return millis, nil
}

func (s *Store) StoreLastFetchedAt(ctx context.Context, epochMillis int64) error {
	ctx, span := s.start(ctx, "store_last_fetched_at_sql")
	defer span.End()

	return s.upsert(ctx, span, `INSERT INTO profile_sessions (namespace, last_fetched_at) VALUES ($1, $2)
ON CONFLICT (namespace) DO UPDATE SET last_fetched_at = EXCLUDED.last_fetched_at, updated_at = now();`,
		s.namespace, epochMillis)
}

// Clear drops the row of the namespace.
func (s *Store) Clear(ctx context.Context) error {
	ctx, span := s.start(ctx, "clear_profile_session_sql")
	defer span.End()

	if _, err := s.db.Exec(ctx, `DELETE FROM profile_sessions WHERE namespace = $1;`, s.namespace); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("deleting profile session: %w", err)
	}

	return nil
}

func (s *Store) upsert(ctx context.Context, span trace.Span, query string, args ...any) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return fmt.Errorf("executing upsert: %w", handlePgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("committing tx: %w", err)
	}

	return nil
}

func (s *Store) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer("profile-session/profilesql").Start(ctx, name,
		trace.WithAttributes(attribute.String("profile.namespace", s.namespace)),
	)
}

// noRowsIsZero treats a missing row as a namespace nobody has written yet.
func noRowsIsZero(span trace.Span, err error) error {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "select failed")

	return err
}
