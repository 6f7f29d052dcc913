// Package profilevalkey persists the profile session in ValKey.
//
// Keys are laid out as <prefix>:<namespace>:<field>; values are JSON encoded.
package profilevalkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/profile-session/internal/profile"
	"github.com/openkcm/profile-session/internal/serviceerr"
)

const (
	fieldToken         = "user_token"
	fieldProfile       = "user_profile"
	fieldLastFetchedAt = "user_last_update"
)

type Store struct {
	valkey    valkey.Client
	prefix    string
	namespace string
}

var _ = profile.Store(&Store{})

func NewStore(valkeyClient valkey.Client, prefix, namespace string) *Store {
	return &Store{
		valkey:    valkeyClient,
		prefix:    strings.TrimSuffix(prefix, ":"),
		namespace: namespace,
	}
}

func (s *Store) LoadProfile(ctx context.Context) (profile.Profile, error) {
	var p profile.Profile
	if err := s.get(ctx, fieldProfile, &p); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
		return profile.Profile{}, fmt.Errorf("getting profile: %w", err)
	}

	return p, nil
}

func (s *Store) StoreProfile(ctx context.Context, p profile.Profile) error {
	return s.set(ctx, fieldProfile, p)
}

func (s *Store) LoadToken(ctx context.Context) (string, error) {
	var token string
	if err := s.get(ctx, fieldToken, &token); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
		return "", fmt.Errorf("getting token: %w", err)
	}

	return token, nil
}

func (s *Store) StoreToken(ctx context.Context, token string) error {
	return s.set(ctx, fieldToken, token)
}

func (s *Store) LoadLastFetchedAt(ctx context.Context) (int64, error) {
	var millis int64
	if err := s.get(ctx, fieldLastFetchedAt, &millis); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
		return 0, fmt.Errorf("getting last fetch time: %w", err)
	}

	return millis, nil
}

func (s *Store) StoreLastFetchedAt(ctx context.Context, epochMillis int64) error {
	return s.set(ctx, fieldLastFetchedAt, epochMillis)
}

// Clear removes every key of the namespace.
func (s *Store) Clear(ctx context.Context) error {
	cmd := s.valkey.B().Del().Key(s.key(fieldToken), s.key(fieldProfile), s.key(fieldLastFetchedAt)).Build()
	if err := s.valkey.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("executing del command: %w", err)
	}

	return nil
}

func (s *Store) set(ctx context.Context, field string, val any) error {
	bytes, err := encode(val)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", field, err)
	}

	if err := s.valkey.Do(ctx, s.valkey.B().Set().Key(s.key(field)).Value(valkey.BinaryString(bytes)).Build()).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}

	return nil
}

func (s *Store) get(ctx context.Context, field string, decodeInto any) error {
	bytes, err := s.valkey.Do(ctx, s.valkey.B().Get().Key(s.key(field)).Build()).AsBytes()
	if err != nil {
		valkeyErr, ok := valkey.IsValkeyErr(err)
		if ok && valkeyErr.IsNil() {
			return errors.Join(valkeyErr, serviceerr.ErrNotFound)
		}

		return fmt.Errorf("executing get command: %w", err)
	}

	if err := decode(bytes, decodeInto); err != nil {
		return fmt.Errorf("decoding %s: %w", field, err)
	}

	return nil
}

func (s *Store) key(field string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, s.namespace, field)
}

func encode(v any) ([]byte, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling json: %w", err)
	}

	return bytes, nil
}

func decode(data []byte, into any) error {
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("unmarshaling json: %w", err)
	}

	return nil
}
