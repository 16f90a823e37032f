package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoBackup = errors.New("no backup found")

// Database stores configuration backups and the devices that were provisioned.
// A pool is used because several devices are provisioned concurrently.
type Database struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, url string) (*Database, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return NewDatabase(pool), nil
}

func NewDatabase(pool *pgxpool.Pool) *Database {
	return &Database{
		pool: pool,
	}
}

func (db *Database) Close() error {
	if db.pool == nil {
		return nil
	}
	db.pool.Close()
	return nil
}

// Backup is a configuration document exactly as the device served it.
type Backup struct {
	ID         int64
	DeviceID   string
	IPAddress  string
	Generation string
	Firmware   string
	Document   []byte
	CreatedAt  time.Time
}

type Device struct {
	ID         string
	Name       string
	IPAddress  string
	MACAddress string
	Firmware   string
	Generation string
	UpdatedAt  time.Time
}
