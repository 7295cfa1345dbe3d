package models

import "time"

// Coin представляет сохраненную монету в watchlist пользователя.
//
// Пара (UserID, CoinID) уникальна: пользователь не может сохранить одну и ту же
// монету дважды. Рыночные поля (Symbol, Name, Price, MarketCap, Change24h)
// перезаписываются целиком при refresh - частичного merge нет.
type Coin struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CoinID    string    `json:"coin_id" db:"coin_id"` // внешний slug провайдера, например "btc-bitcoin"
	Symbol    string    `json:"symbol" db:"symbol"`   // BTC
	Name      string    `json:"name" db:"name"`       // Bitcoin
	Price     float64   `json:"price" db:"price"`
	MarketCap float64   `json:"market_cap" db:"market_cap"`
	Change24h float64   `json:"change_24h" db:"change_24h"` // изменение за 24ч в процентах
	Notes     string    `json:"notes" db:"notes"`           // свободная заметка пользователя
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
