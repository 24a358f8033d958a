package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database.
// These run on startup to ensure tables exist. Monetary amounts are stored
// as TEXT holding decimal strings; REAL would lose cents.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    surname TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    email_confirmed INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS confirmation_codes (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    code TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    token TEXT NOT NULL UNIQUE,
    valid INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS currencies (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (group_id, user_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS group_invites (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    inviter_id TEXT NOT NULL,
    invited_id TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS debts (
    id TEXT PRIMARY KEY,
    lender_id TEXT NOT NULL,
    borrower_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    currency_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    remainder TEXT NOT NULL,
    approved INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    due_at INTEGER NOT NULL DEFAULT 0,
    remind_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
    FOREIGN KEY (currency_id) REFERENCES currencies(id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    debt_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    approved INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (debt_id) REFERENCES debts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS merge_requests (
    id TEXT PRIMARY KEY,
    initiator_id TEXT NOT NULL,
    new_name TEXT NOT NULL,
    new_description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS merge_request_groups (
    merge_request_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    PRIMARY KEY (merge_request_id, group_id),
    FOREIGN KEY (merge_request_id) REFERENCES merge_requests(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS merge_request_approvals (
    id TEXT PRIMARY KEY,
    merge_request_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    approved INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (merge_request_id) REFERENCES merge_requests(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS optimization_requests (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    initiator_id TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS optimization_approvals (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    approved INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (request_id) REFERENCES optimization_requests(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    debt_id TEXT NOT NULL,
    message TEXT NOT NULL,
    is_read INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (debt_id) REFERENCES debts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_debts_lender_id ON debts(lender_id);
CREATE INDEX IF NOT EXISTS idx_debts_borrower_id ON debts(borrower_id);
CREATE INDEX IF NOT EXISTS idx_debts_group_id ON debts(group_id);
CREATE INDEX IF NOT EXISTS idx_transactions_debt_id ON transactions(debt_id);
CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_group_invites_invited_id ON group_invites(invited_id);
CREATE INDEX IF NOT EXISTS idx_notifications_debt_id ON notifications(debt_id);
`

// seedCurrencies inserts the supported currency set with stable IDs so that
// repeated startups are idempotent.
const seedCurrencies = `
INSERT OR IGNORE INTO currencies (id, code, name) VALUES
    ('b7a5fbe0-0001-4000-8000-000000000001', 'USD', 'United States Dollar'),
    ('b7a5fbe0-0001-4000-8000-000000000002', 'EUR', 'Euro'),
    ('b7a5fbe0-0001-4000-8000-000000000003', 'GBP', 'Pound Sterling'),
    ('b7a5fbe0-0001-4000-8000-000000000004', 'KZT', 'Kazakhstani Tenge'),
    ('b7a5fbe0-0001-4000-8000-000000000005', 'JPY', 'Japanese Yen');
`

// runMigrations executes the schema setup and currency seed.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(seedCurrencies)
	return err
}
