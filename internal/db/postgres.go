package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the Postgres connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            avatar_url TEXT,
            bio TEXT,
            subscription_price INT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS posts (
            id UUID PRIMARY KEY,
            creator_id UUID NOT NULL REFERENCES profiles(id),
            title TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            url TEXT NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('image', 'video')),
            is_public BOOLEAN NOT NULL DEFAULT TRUE,
            price INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS message_threads (
            id UUID PRIMARY KEY,
            user1_id UUID NOT NULL REFERENCES profiles(id),
            user2_id UUID NOT NULL REFERENCES profiles(id),
            last_message_id UUID,
            last_message_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(user1_id, user2_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            thread_id UUID REFERENCES message_threads(id),
            sender_id UUID NOT NULL REFERENCES profiles(id),
            recipient_id UUID REFERENCES profiles(id),
            content TEXT NOT NULL DEFAULT '',
            is_mass_message BOOLEAN NOT NULL DEFAULT FALSE,
            attached_content_id UUID REFERENCES posts(id),
            content_price INT NOT NULL DEFAULT 0,
            read_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient_unread ON messages(recipient_id) WHERE read_at IS NULL;`,
		`CREATE TABLE IF NOT EXISTS mass_message_recipients (
            message_id UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
            recipient_id UUID NOT NULL REFERENCES profiles(id),
            read_at TIMESTAMPTZ,
            PRIMARY KEY(message_id, recipient_id)
        );`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
            id UUID PRIMARY KEY,
            creator_id UUID NOT NULL REFERENCES profiles(id),
            subscriber_id UUID NOT NULL REFERENCES profiles(id),
            status TEXT NOT NULL DEFAULT 'active',
            stripe_subscription_id TEXT NOT NULL DEFAULT '',
            current_period_end TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(creator_id, subscriber_id)
        );`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id UUID PRIMARY KEY,
            post_id UUID REFERENCES posts(id),
            creator_id UUID NOT NULL REFERENCES profiles(id),
            user_id UUID NOT NULL REFERENCES profiles(id),
            amount INT NOT NULL,
            stripe_session_id TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'completed',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS post_access (
            post_id UUID NOT NULL REFERENCES posts(id),
            user_id UUID NOT NULL REFERENCES profiles(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY(post_id, user_id)
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
