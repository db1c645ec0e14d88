package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Timestamps are unix milliseconds (BIGINT) and uniqueness is expressed
// with table constraints so the same DDL runs on MySQL and SQLite.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(36)  NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		display_name  VARCHAR(120) NOT NULL DEFAULT '',
		photo_url     VARCHAR(500) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(20)  NOT NULL DEFAULT 'CUSTOMER',
		created_at    BIGINT       NOT NULL,
		CONSTRAINT uk_users_email UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         VARCHAR(36) NOT NULL PRIMARY KEY,
		user_id    VARCHAR(36) NOT NULL,
		token_hash VARCHAR(64) NOT NULL,
		expires_at BIGINT      NOT NULL,
		revoked_at BIGINT      NULL,
		created_at BIGINT      NOT NULL,
		CONSTRAINT uk_refresh_hash UNIQUE (token_hash)
	)`,
	`CREATE TABLE IF NOT EXISTS friend_codes (
		user_id    VARCHAR(36) NOT NULL,
		code       VARCHAR(10) NOT NULL,
		created_at BIGINT      NOT NULL,
		CONSTRAINT uk_friend_codes_user UNIQUE (user_id),
		CONSTRAINT uk_friend_codes_code UNIQUE (code)
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		id          VARCHAR(36) NOT NULL PRIMARY KEY,
		sender_id   VARCHAR(36) NOT NULL,
		receiver_id VARCHAR(36) NOT NULL,
		pair_key    VARCHAR(80) NOT NULL,
		status      VARCHAR(16) NOT NULL,
		created_at  BIGINT      NOT NULL,
		updated_at  BIGINT      NOT NULL,
		accepted_at BIGINT      NULL,
		CONSTRAINT uk_friendships_pair UNIQUE (pair_key),
		CONSTRAINT uk_friendships_receiver UNIQUE (receiver_id, sender_id),
		CONSTRAINT uk_friendships_sender UNIQUE (sender_id, receiver_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		user_id    VARCHAR(36)  NOT NULL,
		type       VARCHAR(32)  NOT NULL,
		title      VARCHAR(200) NOT NULL,
		message    VARCHAR(500) NOT NULL,
		data       TEXT         NOT NULL,
		read_flag  BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at BIGINT       NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wishlist_items (
		id         VARCHAR(36) NOT NULL PRIMARY KEY,
		user_id    VARCHAR(36) NOT NULL,
		item_type  VARCHAR(20) NOT NULL,
		item_id    VARCHAR(64) NOT NULL,
		item_data  TEXT        NOT NULL,
		created_at BIGINT      NOT NULL,
		CONSTRAINT uk_wishlist_item UNIQUE (user_id, item_type, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id          VARCHAR(36) NOT NULL PRIMARY KEY,
		user_id     VARCHAR(36) NOT NULL,
		item_type   VARCHAR(20) NOT NULL,
		item_id     VARCHAR(64) NOT NULL,
		item_data   TEXT        NOT NULL,
		travel_date VARCHAR(10) NOT NULL DEFAULT '',
		guests      INT         NOT NULL DEFAULT 1,
		status      VARCHAR(16) NOT NULL,
		share_token VARCHAR(64) NOT NULL,
		created_at  BIGINT      NOT NULL,
		updated_at  BIGINT      NOT NULL,
		CONSTRAINT uk_bookings_share_token UNIQUE (share_token)
	)`,
	`CREATE TABLE IF NOT EXISTS booking_participants (
		booking_id VARCHAR(36)  NOT NULL,
		user_id    VARCHAR(300) NOT NULL,
		name       VARCHAR(120) NOT NULL,
		email      VARCHAR(255) NOT NULL,
		phone      VARCHAR(40)  NULL,
		joined_at  BIGINT       NOT NULL,
		status     VARCHAR(16)  NOT NULL,
		role       VARCHAR(16)  NOT NULL,
		CONSTRAINT uk_booking_participant UNIQUE (booking_id, user_id)
	)`,
}

// CreateTables creates every table the service needs when it is missing.
func CreateTables(ctx context.Context, db *sql.DB) error {
	for _, ddl := range tables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}
