// database/connection.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/gewnthar/eof/config"
	"github.com/go-sql-driver/mysql" // MariaDB/MySQL driver
)

var DB *sql.DB

var (
	ErrNotInitialized = errors.New("database connection is not initialized")
	ErrNotFound       = errors.New("record not found")
)

// DSN builds the driver connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

// InitDB initializes the database connection pool and makes sure the
// ledger table exists.
func InitDB(cfg config.DatabaseConfig) error {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	return attachDB(db)
}

// attachDB pings db, installs it as DB and creates the schema. On failure db
// is closed and DB is left nil.
func attachDB(db *sql.DB) error {
	// Configure connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	if err := EnsureSchema(); err != nil {
		CloseDB()
		return err
	}

	log.Println("Database: Successfully connected to the database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		DB.Close()
		DB = nil
		log.Println("Database: connection closed.")
	}
}
