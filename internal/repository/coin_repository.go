package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"coinwatch/internal/models"
)

// Ошибки репозитория монет
var (
	ErrCoinNotFound = errors.New("coin not found")
	ErrCoinExists   = errors.New("coin already saved")
)

// CoinRepository - работа с таблицей coins.
//
// Все операции ограничены владельцем (user_id): чтение и запись чужих
// записей невозможны на уровне запросов.
type CoinRepository struct {
	db *sql.DB
}

// NewCoinRepository создает новый экземпляр репозитория
func NewCoinRepository(db *sql.DB) *CoinRepository {
	return &CoinRepository{db: db}
}

// Create сохраняет новую монету в watchlist.
// Возвращает ErrCoinExists при нарушении уникальности (user_id, coin_id).
func (r *CoinRepository) Create(coin *models.Coin) error {
	query := `
		INSERT INTO coins (user_id, coin_id, symbol, name, price, market_cap, change_24h, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	coin.CreatedAt = time.Now()

	err := r.db.QueryRow(
		query,
		coin.UserID,
		coin.CoinID,
		coin.Symbol,
		coin.Name,
		coin.Price,
		coin.MarketCap,
		coin.Change24h,
		coin.Notes,
		coin.CreatedAt,
	).Scan(&coin.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCoinExists
		}
		return err
	}

	return nil
}

// GetByID возвращает монету по id, принадлежащую указанному пользователю
func (r *CoinRepository) GetByID(userID, id int) (*models.Coin, error) {
	query := `
		SELECT id, user_id, coin_id, symbol, name, price, market_cap, change_24h, notes, created_at
		FROM coins
		WHERE id = $1 AND user_id = $2`

	coin := &models.Coin{}
	err := r.db.QueryRow(query, id, userID).Scan(
		&coin.ID,
		&coin.UserID,
		&coin.CoinID,
		&coin.Symbol,
		&coin.Name,
		&coin.Price,
		&coin.MarketCap,
		&coin.Change24h,
		&coin.Notes,
		&coin.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoinNotFound
		}
		return nil, err
	}

	return coin, nil
}

// Find возвращает монеты пользователя с опциональным фильтром и сортировкой.
//
// filter - регистронезависимый поиск подстроки в display name.
// sortBy: "price" - по цене ascending, "change24h" - по изменению за 24ч
// descending; неизвестные значения молча игнорируются (естественный порядок).
func (r *CoinRepository) Find(userID int, filter, sortBy string) ([]*models.Coin, error) {
	query := `
		SELECT id, user_id, coin_id, symbol, name, price, market_cap, change_24h, notes, created_at
		FROM coins
		WHERE user_id = $1`

	args := []interface{}{userID}

	if filter != "" {
		query += ` AND name ILIKE $2`
		args = append(args, "%"+filter+"%")
	}

	switch sortBy {
	case "price":
		query += ` ORDER BY price ASC`
	case "change24h":
		query += ` ORDER BY change_24h DESC`
	default:
		query += ` ORDER BY id ASC`
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coins []*models.Coin
	for rows.Next() {
		coin := &models.Coin{}
		err := rows.Scan(
			&coin.ID,
			&coin.UserID,
			&coin.CoinID,
			&coin.Symbol,
			&coin.Name,
			&coin.Price,
			&coin.MarketCap,
			&coin.Change24h,
			&coin.Notes,
			&coin.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return coins, nil
}

// Update перезаписывает изменяемые поля монеты целиком.
// Рыночный снимок не мержится по полям - refresh означает "текущая правда".
func (r *CoinRepository) Update(coin *models.Coin) error {
	query := `
		UPDATE coins
		SET symbol = $1, name = $2, price = $3, market_cap = $4, change_24h = $5, notes = $6
		WHERE id = $7 AND user_id = $8`

	result, err := r.db.Exec(
		query,
		coin.Symbol,
		coin.Name,
		coin.Price,
		coin.MarketCap,
		coin.Change24h,
		coin.Notes,
		coin.ID,
		coin.UserID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCoinNotFound
	}

	return nil
}

// Delete удаляет монету пользователя по id
func (r *CoinRepository) Delete(userID, id int) error {
	query := `DELETE FROM coins WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCoinNotFound
	}

	return nil
}

// isUniqueViolation проверяет, является ли ошибка нарушением UNIQUE constraint
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "23505")
}
