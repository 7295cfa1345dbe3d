package service

import (
	"context"

	"coinwatch/internal/gateway"
)

// Параметры подборки топ-новостей рынка
const (
	topNewsKeyword  = "cryptocurrency"
	topNewsPageSize = 8
)

// NewsService отдает общую новостную ленту рынка.
// Персональные заголовки монет живут в CoinService - здесь только
// широкая подборка по фиксированному ключевому слову.
type NewsService struct {
	news NewsGateway
}

// NewNewsService создает новый экземпляр NewsService.
func NewNewsService(news NewsGateway) *NewsService {
	return &NewsService{news: news}
}

// TopNews возвращает подборку свежих новостей рынка.
// Пустой результат - валидный ответ, не ошибка.
func (s *NewsService) TopNews(ctx context.Context) ([]gateway.Article, error) {
	return s.news.FetchTopNews(ctx, topNewsKeyword, topNewsPageSize)
}
