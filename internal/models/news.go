package models

import "time"

// Headline представляет новостной заголовок, привязанный к сохраненной монете.
//
// CoinID ссылается на coins.id (не на внешний slug провайдера). Заголовки
// удаляются каскадно вместе с монетой. "Текущим" считается заголовок с
// максимальным CreatedAt; refresh удаляет все старые заголовки монеты и
// вставляет не более одного нового.
type Headline struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	CoinID      int        `json:"coin_id" db:"coin_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	URL         string     `json:"url" db:"url"`
	ImageURL    string     `json:"image_url" db:"image_url"`
	PublishedAt *time.Time `json:"published_at" db:"published_at"` // может отсутствовать у провайдера
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
