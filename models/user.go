package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/utroned1234/APPDEFER/database"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSponsorCycle = errors.New("sponsor assignment would create a cycle")
)

type User struct {
	ID           string     `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	UserCode     string     `json:"user_code" db:"user_code"`
	Role         string     `json:"role" db:"role"`
	SponsorID    *string    `json:"sponsor_id,omitempty" db:"sponsor_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateUser регистрирует пользователя. sponsorCode – user_code пригласившего (опционально).
func CreateUser(ctx context.Context, username, password, fullName, sponsorCode string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var sponsorID *string
	if sponsorCode != "" {
		var id string
		err := database.Pool.QueryRow(ctx, `SELECT id FROM users WHERE user_code = $1`, sponsorCode).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("sponsor code %q: %w", sponsorCode, ErrUserNotFound)
			}
			return nil, err
		}
		sponsorID = &id
	}

	// user_code – короткий код для реферальной ссылки
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

	var u User
	err = database.Pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, full_name, user_code, sponsor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, password_hash, COALESCE(full_name, ''), user_code, role, sponsor_id, created_at
	`, username, hash, fullName, code, sponsorID).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.UserCode, &u.Role, &u.SponsorID, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := database.Pool.QueryRow(ctx, `
		SELECT id, username, password_hash, COALESCE(full_name, ''), user_code, role, sponsor_id, created_at
		FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.UserCode, &u.Role, &u.SponsorID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := database.Pool.QueryRow(ctx, `
		SELECT id, username, password_hash, COALESCE(full_name, ''), user_code, role, sponsor_id, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.UserCode, &u.Role, &u.SponsorID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateSponsor переназначает спонсора (админ). Перед записью проверяем,
// что цепочка спонсоров нового родителя не проходит через самого пользователя –
// иначе в лесу появился бы цикл и обход рефералки зациклился бы.
func UpdateSponsor(ctx context.Context, userID string, sponsorID *string) error {
	if sponsorID != nil {
		cycle, err := wouldCreateCycle(ctx, userID, *sponsorID)
		if err != nil {
			return err
		}
		if cycle {
			return ErrSponsorCycle
		}
	}
	_, err := database.Pool.Exec(ctx, `UPDATE users SET sponsor_id = $1 WHERE id = $2`, sponsorID, userID)
	return err
}

func wouldCreateCycle(ctx context.Context, userID, sponsorID string) (bool, error) {
	if userID == sponsorID {
		return true, nil
	}
	cur := sponsorID
	// Глубина дерева ограничена количеством пользователей; страховка от битых данных
	for i := 0; i < 10000; i++ {
		var parent *string
		err := database.Pool.QueryRow(ctx, `SELECT sponsor_id FROM users WHERE id = $1`, cur).Scan(&parent)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, ErrUserNotFound
			}
			return false, err
		}
		if parent == nil {
			return false, nil
		}
		if *parent == userID {
			return true, nil
		}
		cur = *parent
	}
	return true, nil
}

// DownlineLevels возвращает id пользователей на уровнях 1..3 реферального дерева.
// Обход ограничен тремя уровнями по построению – глубже не рекурсирует.
func DownlineLevels(ctx context.Context, userID string) ([3][]string, error) {
	var levels [3][]string

	ids := []string{userID}
	for lvl := 0; lvl < 3; lvl++ {
		rows, err := database.Pool.Query(ctx, `SELECT id FROM users WHERE sponsor_id = ANY($1)`, ids)
		if err != nil {
			return levels, err
		}
		var next []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return levels, err
			}
			next = append(next, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return levels, err
		}
		levels[lvl] = next
		if len(next) == 0 {
			break
		}
		ids = next
	}
	return levels, nil
}

// NetworkCount считает всю сеть пользователя (все уровни, рекурсивный CTE)
func NetworkCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := database.Pool.QueryRow(ctx, `
		WITH RECURSIVE network AS (
			SELECT id FROM users WHERE sponsor_id = $1
			UNION ALL
			SELECT u.id FROM users u
			INNER JOIN network n ON u.sponsor_id = n.id
		)
		SELECT COUNT(*) FROM network
	`, userID).Scan(&count)
	return count, err
}

func DirectReferralsCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := database.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE sponsor_id = $1`, userID).Scan(&count)
	return count, err
}
