package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coinwatch/internal/models"
)

// NewsRepository - работа с таблицей headlines.
//
// Хранит производную проекцию "последний заголовок монеты": на монету
// считается текущим заголовок с максимальным created_at. Replace выполняет
// delete-then-insert в одной SQL транзакции, чтобы читатели никогда не
// видели больше одного заголовка на монету.
type NewsRepository struct {
	db *sql.DB
}

// NewNewsRepository создает новый экземпляр репозитория
func NewNewsRepository(db *sql.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// Create сохраняет новый заголовок для монеты
func (r *NewsRepository) Create(headline *models.Headline) error {
	query := `
		INSERT INTO headlines (user_id, coin_id, title, description, url, image_url, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	headline.CreatedAt = time.Now()

	return r.db.QueryRow(
		query,
		headline.UserID,
		headline.CoinID,
		headline.Title,
		headline.Description,
		headline.URL,
		headline.ImageURL,
		headline.PublishedAt,
		headline.CreatedAt,
	).Scan(&headline.ID)
}

// Latest возвращает текущий (самый свежий) заголовок монеты.
// Отсутствие заголовка - нормальное состояние, возвращается (nil, nil).
func (r *NewsRepository) Latest(userID, coinID int) (*models.Headline, error) {
	query := `
		SELECT id, user_id, coin_id, title, description, url, image_url, published_at, created_at
		FROM headlines
		WHERE user_id = $1 AND coin_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	headline := &models.Headline{}
	err := r.db.QueryRow(query, userID, coinID).Scan(
		&headline.ID,
		&headline.UserID,
		&headline.CoinID,
		&headline.Title,
		&headline.Description,
		&headline.URL,
		&headline.ImageURL,
		&headline.PublishedAt,
		&headline.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return headline, nil
}

// Replace атомарно заменяет заголовки монеты: удаляет все существующие
// и вставляет новый, если он передан (nil - монета остается без заголовка).
func (r *NewsRepository) Replace(userID, coinID int, headline *models.Headline) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM headlines WHERE user_id = $1 AND coin_id = $2`, userID, coinID); err != nil {
		return fmt.Errorf("delete old headlines: %w", err)
	}

	if headline != nil {
		headline.UserID = userID
		headline.CoinID = coinID
		headline.CreatedAt = time.Now()

		err := tx.QueryRow(`
			INSERT INTO headlines (user_id, coin_id, title, description, url, image_url, published_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			headline.UserID,
			headline.CoinID,
			headline.Title,
			headline.Description,
			headline.URL,
			headline.ImageURL,
			headline.PublishedAt,
			headline.CreatedAt,
		).Scan(&headline.ID)
		if err != nil {
			return fmt.Errorf("insert new headline: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteByCoin удаляет все заголовки монеты (каскад при удалении монеты)
func (r *NewsRepository) DeleteByCoin(userID, coinID int) error {
	query := `DELETE FROM headlines WHERE user_id = $1 AND coin_id = $2`
	_, err := r.db.Exec(query, userID, coinID)
	return err
}
