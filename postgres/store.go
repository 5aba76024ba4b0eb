package postgres

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store implements the account key-value store on a single postgres
// table. Account records are opaque blobs; all business logic lives in
// the engine.
type Store struct {
	client *Client
}

func NewStore(client *Client) *Store {
	return &Store{client}
}

func (s *Store) Get(key string) ([]byte, error) {
	var value []byte

	query := `SELECT value FROM account_record WHERE key = $1`

	err := s.client.instance().Get(&value, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return value, nil
}

func (s *Store) Set(key string, value []byte) error {
	query := `INSERT INTO account_record (key, value, updated_at)
    	VALUES ($1, $2, now())
    	ON CONFLICT (key) DO UPDATE
    	SET value = EXCLUDED.value, updated_at = now()`

	_, err := s.client.instance().Exec(query, key, value)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for key [%v]: [%v]",
			key,
			err,
		)
	}

	return nil
}

func (s *Store) Delete(key string) error {
	query := `DELETE FROM account_record WHERE key = $1`

	_, err := s.client.instance().Exec(query, key)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for key [%v]: [%v]",
			key,
			err,
		)
	}

	return nil
}

func (s *Store) Keys(prefix string) ([]string, error) {
	keys := make([]string, 0)

	query := `SELECT key FROM account_record
    	WHERE key LIKE $1 || '%' ORDER BY key`

	err := s.client.instance().Select(&keys, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return keys, nil
}

func (s *Store) MGet(keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return [][]byte{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT key, value FROM account_record WHERE key IN (?)`,
		keys,
	)
	if err != nil {
		return nil, fmt.Errorf("could not build query: [%v]", err)
	}

	instance := s.client.instance()

	rows, err := instance.Queryx(instance.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	valuesByKey := make(map[string][]byte)

	for rows.Next() {
		var key string
		var value []byte

		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("could not scan row: [%v]", err)
		}

		valuesByKey[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate rows: [%v]", err)
	}

	values := make([][]byte, len(keys))
	for index, key := range keys {
		values[index] = valuesByKey[key]
	}

	return values, nil
}
