package session

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists session state in the session_state table, one row per
// (session, key), value as jsonb.
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Get(ctx context.Context, sessionID int64, key Key, dest any) (bool, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `
		select value from session_state
		where session_id = $1 and key = $2
	`, sessionID, string(key)).Scan(&raw)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *PGStore) Put(ctx context.Context, sessionID int64, key Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
		insert into session_state (session_id, key, value, updated_at)
		values ($1, $2, $3, now())
		on conflict (session_id, key) do update
		set value = excluded.value, updated_at = now()
	`, sessionID, string(key), raw)
	return err
}

func (s *PGStore) Delete(ctx context.Context, sessionID int64, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, string(k))
	}
	_, err := s.DB.Exec(ctx, `
		delete from session_state
		where session_id = $1 and key = any($2)
	`, sessionID, names)
	return err
}
