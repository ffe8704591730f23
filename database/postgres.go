package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utroned1234/APPDEFER/config"
)

var Pool *pgxpool.Pool

func InitDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var err error
	Pool, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := Pool.Ping(context.Background()); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	log.Println("✅ Подключение к PostgreSQL установлено")
	if err := createUsersTable(); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	if err := createPackagesTables(); err != nil {
		return fmt.Errorf("failed to create vip tables: %w", err)
	}
	if err := createLedgerTable(); err != nil {
		return fmt.Errorf("failed to create wallet_ledger table: %w", err)
	}
	if err := createBonusRulesTable(); err != nil {
		return fmt.Errorf("failed to create referral_bonus_rules table: %w", err)
	}
	if err := createTasksTables(); err != nil {
		return fmt.Errorf("failed to create tasks tables: %w", err)
	}
	if err := createProfitRunTable(); err != nil {
		return fmt.Errorf("failed to create daily_profit_run table: %w", err)
	}
	return nil
}

func CloseDB() {
	if Pool != nil {
		Pool.Close()
		log.Println("🛑 Соединение с PostgreSQL закрыто")
	}
}

func createUsersTable() error {
	// pgcrypto для gen_random_uuid()
	_, err := Pool.Exec(context.Background(), `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(255),
			user_code VARCHAR(20) UNIQUE NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'USER',
			sponsor_id UUID REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}

	// Индекс по спонсору – обход реферального дерева
	_, err = Pool.Exec(context.Background(), `CREATE INDEX IF NOT EXISTS idx_users_sponsor_id ON users(sponsor_id);`)
	if err != nil {
		return err
	}

	log.Println("✅ Таблица users готова")
	return nil
}

// createPackagesTables создаёт таблицы VIP-пакетов и покупок
func createPackagesTables() error {
	_, err := Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS vip_packages (
			id SERIAL PRIMARY KEY,
			level INTEGER UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL,
			investment_bs DECIMAL(18,2) NOT NULL,
			daily_profit_bs DECIMAL(18,2) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS purchases (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			package_id INTEGER NOT NULL REFERENCES vip_packages(id),
			investment_bs DECIMAL(18,2) NOT NULL,
			daily_profit_bs DECIMAL(18,2) NOT NULL,
			total_earned_bs DECIMAL(18,2) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			roulette_spun BOOLEAN NOT NULL DEFAULT false,
			roulette_won_bs DECIMAL(18,2),
			last_profit_at TIMESTAMPTZ,
			activated_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
		CREATE INDEX IF NOT EXISTS idx_purchases_user_id ON purchases(user_id);
		CREATE INDEX IF NOT EXISTS idx_purchases_status ON purchases(status);
	`)
	if err != nil {
		return err
	}

	// Базовые пакеты, если таблица пуста
	var count int
	err = Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM vip_packages`).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		_, err = Pool.Exec(context.Background(), `
			INSERT INTO vip_packages (level, name, investment_bs, daily_profit_bs) VALUES
			(1, 'VIP 1', 500, 25),
			(2, 'VIP 2', 1000, 55),
			(3, 'VIP 3', 2000, 120),
			(4, 'VIP 4', 5000, 325),
			(5, 'VIP 5', 10000, 700);
		`)
		if err != nil {
			return err
		}
		log.Println("✅ Базовые VIP-пакеты добавлены")
	}

	log.Println("✅ Таблицы VIP-пакетов и покупок готовы")
	return nil
}

// createLedgerTable создаёт журнал кошелька.
// Журнал append-only: ни UPDATE, ни DELETE в коде не существует,
// корректировки оформляются новыми записями типа ADJUSTMENT.
func createLedgerTable() error {
	_, err := Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS wallet_ledger (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type VARCHAR(30) NOT NULL,
			amount_bs DECIMAL(18,2) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
		CREATE INDEX IF NOT EXISTS idx_wallet_ledger_user_id ON wallet_ledger(user_id);
		CREATE INDEX IF NOT EXISTS idx_wallet_ledger_user_type_created ON wallet_ledger(user_id, type, created_at DESC);
	`)
	if err != nil {
		return err
	}

	log.Println("✅ Таблица wallet_ledger готова")
	return nil
}

func createBonusRulesTable() error {
	_, err := Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS referral_bonus_rules (
			level INTEGER PRIMARY KEY,
			percentage DECIMAL(5,2) NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// Три уровня патронажа по умолчанию
	var count int
	err = Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM referral_bonus_rules`).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		_, err = Pool.Exec(context.Background(), `
			INSERT INTO referral_bonus_rules (level, percentage) VALUES (1, 10), (2, 5), (3, 2);
		`)
		if err != nil {
			return err
		}
		log.Println("✅ Правила реферальных бонусов добавлены")
	}

	log.Println("✅ Таблица referral_bonus_rules готова")
	return nil
}

// createTasksTables создаёт таблицы ежедневных заданий (политика "tasks")
func createTasksTables() error {
	_, err := Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS daily_tasks (
			position INTEGER PRIMARY KEY CHECK (position BETWEEN 1 AND 4),
			image_url TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}

	_, err = Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS task_completions (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, position)
		);
	`)
	if err != nil {
		return err
	}

	log.Println("✅ Таблицы заданий готовы")
	return nil
}

// createProfitRunTable создаёт singleton-строку для массового начисления.
// Одна версионированная строка с conditional update вместо глобальной переменной –
// остаётся корректной при нескольких инстансах сервера.
func createProfitRunTable() error {
	_, err := Pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS daily_profit_run (
			id INTEGER PRIMARY KEY,
			last_run_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	log.Println("✅ Таблица daily_profit_run готова")
	return nil
}
