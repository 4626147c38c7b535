package db

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ensureStep struct {
	name string
	ddl  string
}

var schema = []ensureStep{
	{"heroes", `
        CREATE TABLE IF NOT EXISTS heroes (
            id UUID PRIMARY KEY,
            user_id TEXT NOT NULL,
            display_name TEXT NOT NULL,
            bio TEXT NOT NULL DEFAULT '',
            avatar_url TEXT NOT NULL DEFAULT '',
            skills TEXT[] NOT NULL DEFAULT '{}',
            rating NUMERIC(3,2) NOT NULL DEFAULT 0,
            jobs_completed INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT heroes_user_id_key UNIQUE (user_id)
        );`},
	{"service_requests", `
        CREATE TABLE IF NOT EXISTS service_requests (
            id UUID PRIMARY KEY,
            requester_id TEXT NOT NULL,
            assigned_hero_id TEXT NULL,
            title VARCHAR(100) NOT NULL,
            description VARCHAR(2000) NOT NULL DEFAULT '',
            category TEXT NOT NULL CHECK (category IN ('cleaning','repairs','delivery','tutoring','other')),
            location VARCHAR(255) NOT NULL,
            scheduled_date TIMESTAMP WITH TIME ZONE NOT NULL,
            duration_hours INTEGER NOT NULL CHECK (duration_hours BETWEEN 1 AND 24),
            budget_min NUMERIC(12,2) NOT NULL CHECK (budget_min >= 0),
            budget_max NUMERIC(12,2) NOT NULL,
            payment_method TEXT NOT NULL DEFAULT 'in_app' CHECK (payment_method IN ('in_app','cash')),
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','assigned','active','completed','cancelled')),
            created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT service_requests_budget_check CHECK (budget_max >= budget_min),
            CONSTRAINT service_requests_assignee_check CHECK ((assigned_hero_id IS NULL) = (status IN ('pending','cancelled')))
        );
        CREATE INDEX IF NOT EXISTS idx_requests_available ON service_requests(scheduled_date) WHERE status = 'pending' AND assigned_hero_id IS NULL;
        CREATE INDEX IF NOT EXISTS idx_requests_requester ON service_requests(requester_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_requests_assigned ON service_requests(assigned_hero_id) WHERE assigned_hero_id IS NOT NULL;`},
	{"request_acceptances", `
        CREATE TABLE IF NOT EXISTS request_acceptances (
            id UUID PRIMARY KEY,
            request_id UUID NOT NULL REFERENCES service_requests(id) ON DELETE CASCADE,
            hero_record_id UUID NOT NULL REFERENCES heroes(id) ON DELETE CASCADE,
            accepted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            chosen BOOLEAN NOT NULL DEFAULT FALSE,
            CONSTRAINT request_acceptances_request_hero_key UNIQUE (request_id, hero_record_id)
        );
        CREATE UNIQUE INDEX IF NOT EXISTS request_acceptances_one_chosen ON request_acceptances(request_id) WHERE chosen;`},
	{"hero_wallets", `
        CREATE TABLE IF NOT EXISTS hero_wallets (
            id UUID PRIMARY KEY,
            hero_user_id TEXT NOT NULL REFERENCES heroes(user_id) ON DELETE RESTRICT,
            earnings_balance NUMERIC(12,2) NOT NULL DEFAULT 0,
            fee_balance NUMERIC(12,2) NOT NULL DEFAULT 0,
            fee_threshold NUMERIC(12,2) NOT NULL DEFAULT -100,
            bank_account_name TEXT NOT NULL DEFAULT '',
            bank_account_number TEXT NOT NULL DEFAULT '',
            bank_name TEXT NOT NULL DEFAULT '',
            identity_verified BOOLEAN NOT NULL DEFAULT FALSE,
            last_withdrawal_at TIMESTAMP WITH TIME ZONE NULL,
            withdrawal_cooldown_hours INTEGER NOT NULL DEFAULT 24,
            created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT hero_wallets_hero_user_id_key UNIQUE (hero_user_id),
            CONSTRAINT hero_wallets_earnings_check CHECK (earnings_balance >= 0)
        );`},
	{"wallet_transactions", `
        CREATE TABLE IF NOT EXISTS wallet_transactions (
            id UUID PRIMARY KEY,
            wallet_id UUID NOT NULL REFERENCES hero_wallets(id) ON DELETE RESTRICT,
            type TEXT NOT NULL CHECK (type IN ('cash_job_fee','in_app_payment','withdrawal','fee_top_up','refund','adjustment')),
            amount NUMERIC(12,2) NOT NULL,
            balance_type TEXT NOT NULL CHECK (balance_type IN ('earnings','fee')),
            status TEXT NOT NULL CHECK (status IN ('pending','completed','failed','cancelled')),
            description TEXT NOT NULL DEFAULT '',
            earnings_balance_after NUMERIC(12,2) NOT NULL,
            fee_balance_after NUMERIC(12,2) NOT NULL,
            request_id UUID NULL,
            created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_wallet_transactions_wallet ON wallet_transactions(wallet_id, created_at);
        CREATE UNIQUE INDEX IF NOT EXISTS wallet_transactions_settlement_key ON wallet_transactions(wallet_id, request_id, type)
            WHERE request_id IS NOT NULL AND type IN ('cash_job_fee','in_app_payment');`},
	{"withdrawal_requests", `
        CREATE TABLE IF NOT EXISTS withdrawal_requests (
            id UUID PRIMARY KEY,
            wallet_id UUID NOT NULL REFERENCES hero_wallets(id) ON DELETE RESTRICT,
            amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
            status TEXT NOT NULL CHECK (status IN ('pending','completed','failed','cancelled')),
            bank_snapshot JSONB NOT NULL,
            transaction_id UUID NOT NULL REFERENCES wallet_transactions(id),
            failure_reason TEXT NOT NULL DEFAULT '',
            requested_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
            processed_at TIMESTAMP WITH TIME ZONE NULL,
            completed_at TIMESTAMP WITH TIME ZONE NULL,
            failed_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_withdrawals_wallet ON withdrawal_requests(wallet_id, requested_at);
        CREATE INDEX IF NOT EXISTS idx_withdrawals_pending ON withdrawal_requests(wallet_id) WHERE status = 'pending';`},
	{"notifications", `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            user_id TEXT NOT NULL,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            body TEXT,
            reference UUID NULL,
            metadata JSONB NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;`},
}

// EnsureSchema creates every table and index that is missing. It is safe to
// run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, step := range schema {
		if _, err := pool.Exec(ctx, step.ddl); err != nil {
			return fmt.Errorf("ensure %s: %w", step.name, err)
		}
		log.Printf("%s table ensured", step.name)
	}
	return nil
}
