package credstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

var _ Backend = (*BunBackend)(nil)

// CredentialRecord is the bun model backing the durable backend.
type CredentialRecord struct {
	bun.BaseModel `bun:"table:credentials,alias:cred"`
	Key           string `bun:"key,pk" json:"key"`
	Value         string `bun:"value,notnull" json:"value"`
}

// BunBackend is the durable backend, a two-row credentials table in
// whatever database the application already carries (sqlite in the
// back-office deployments).
type BunBackend struct {
	db *bun.DB
}

// NewBunBackend returns a backend over db. Call Init once to ensure the
// table exists.
func NewBunBackend(db *bun.DB) *BunBackend {
	return &BunBackend{db: db}
}

// Init creates the credentials table if needed.
func (b *BunBackend) Init(ctx context.Context) error {
	_, err := b.db.NewCreateTable().
		Model((*CredentialRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Get implements Backend.
func (b *BunBackend) Get(ctx context.Context, key string) (string, error) {
	record := new(CredentialRecord)

	err := b.db.NewSelect().
		Model(record).
		Where("?TableAlias.key = ?", key).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}

	return record.Value, nil
}

// Set implements Backend.
func (b *BunBackend) Set(ctx context.Context, key, value string) error {
	record := &CredentialRecord{Key: key, Value: value}

	_, err := b.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

// Delete implements Backend.
func (b *BunBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.NewDelete().
		Model((*CredentialRecord)(nil)).
		Where("?TableAlias.key = ?", key).
		Exec(ctx)
	return err
}
