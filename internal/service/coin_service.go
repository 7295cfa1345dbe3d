package service

import (
	"context"
	"errors"
	"strings"

	"coinwatch/internal/gateway"
	"coinwatch/internal/models"
	"coinwatch/internal/repository"
	"coinwatch/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Ошибки сервиса монет
var (
	ErrCoinIDRequired   = errors.New("coinId is required")
	ErrCoinNotFound     = errors.New("coin not found")
	ErrCoinAlreadySaved = errors.New("coin already saved")
)

// Максимум одновременных выборок заголовков в List
const listHeadlineConcurrency = 8

// CoinService реализует workflow синхронизации монет.
//
// Каждая операция - короткая фиксированная последовательность:
// market gateway → news gateway → store, с определенными точками отказа.
// Ошибки gateway не ретраятся: классифицируются и сразу отдаются вызывающему
// (gateway.ErrCoinDataUnavailable / gateway.ErrNewsUnavailable проходят
// насквозь, HTTP слой мапит их на статусы).
type CoinService struct {
	coinRepo CoinRepositoryInterface
	newsRepo NewsRepositoryInterface
	market   MarketGateway
	news     NewsGateway
}

// NewCoinService создает новый экземпляр CoinService.
func NewCoinService(coinRepo CoinRepositoryInterface, newsRepo NewsRepositoryInterface, market MarketGateway, news NewsGateway) *CoinService {
	return &CoinService{
		coinRepo: coinRepo,
		newsRepo: newsRepo,
		market:   market,
		news:     news,
	}
}

// CoinWithHeadline - сохраненная монета вместе с ее текущим заголовком.
// Headline может быть nil: отсутствие новостей - валидное состояние.
type CoinWithHeadline struct {
	*models.Coin
	Headline *models.Headline `json:"headline"`
}

// UpdateCoinParams - параметры обновления монеты.
// Оба эффекта независимы и комбинируемы.
type UpdateCoinParams struct {
	Notes   *string // nil - не трогать заметку; пустая строка - затереть
	Refresh bool    // перечитать рыночные данные и заголовок
}

// Create сохраняет новую монету в watchlist пользователя.
//
// Последовательность:
//  1. Валидация coinId.
//  2. Market gateway: провал - gateway.ErrCoinDataUnavailable, ничего не сохранено.
//  3. News gateway: провал - gateway.ErrNewsUnavailable, ничего не сохранено.
//     До этой точки create атомарен для вызывающего, хотя внешних вызова два.
//  4. Сохранение монеты; нарушение уникальности - ErrCoinAlreadySaved.
//  5. Если статья нашлась - сохранение заголовка. Провал записи заголовка
//     НЕ откатывает монету (принятое окно несогласованности): монета
//     возвращается без заголовка, ошибка логируется.
func (s *CoinService) Create(ctx context.Context, userID int, coinID string) (*CoinWithHeadline, error) {
	coinID = strings.TrimSpace(coinID)
	if coinID == "" {
		return nil, ErrCoinIDRequired
	}

	data, err := s.market.FetchCoin(ctx, coinID)
	if err != nil {
		utils.Warn("market data fetch failed",
			utils.String("operation", "create"),
			utils.Int("user_id", userID),
			utils.String("coin_id", coinID),
			utils.Err(err))
		return nil, err
	}

	articles, err := s.news.FetchNews(ctx, data.Symbol, 1)
	if err != nil {
		utils.Warn("news fetch failed",
			utils.String("operation", "create"),
			utils.Int("user_id", userID),
			utils.String("coin_id", coinID),
			utils.Err(err))
		return nil, err
	}

	coin := &models.Coin{
		UserID:    userID,
		CoinID:    coinID,
		Symbol:    data.Symbol,
		Name:      data.Name,
		Price:     data.Price,
		MarketCap: data.MarketCap,
		Change24h: data.Change24h,
	}

	if err := s.coinRepo.Create(coin); err != nil {
		if errors.Is(err, repository.ErrCoinExists) {
			return nil, ErrCoinAlreadySaved
		}
		return nil, err
	}

	var headline *models.Headline
	if len(articles) > 0 {
		headline = headlineFromArticle(userID, coin.ID, articles[0])
		if err := s.newsRepo.Create(headline); err != nil {
			// Монета уже сохранена - не откатываем, отдаем без заголовка
			utils.Error("headline write failed after coin create",
				utils.Int("user_id", userID),
				utils.Int("coin_ref", coin.ID),
				utils.Err(err))
			headline = nil
		}
	}

	return &CoinWithHeadline{Coin: coin, Headline: headline}, nil
}

// List возвращает монеты пользователя с их текущими заголовками.
//
// Выборки заголовков независимы между строками и выполняются конкурентно
// (ограниченный errgroup); порядок результата определяется store.
func (s *CoinService) List(ctx context.Context, userID int, filter, sortBy string) ([]*CoinWithHeadline, error) {
	coins, err := s.coinRepo.Find(userID, filter, sortBy)
	if err != nil {
		return nil, err
	}

	result := make([]*CoinWithHeadline, len(coins))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(listHeadlineConcurrency)
	for i, coin := range coins {
		i, coin := i, coin
		g.Go(func() error {
			headline, err := s.newsRepo.Latest(userID, coin.ID)
			if err != nil {
				return err
			}
			result[i] = &CoinWithHeadline{Coin: coin, Headline: headline}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// Update применяет note-edit и/или refresh к сохраненной монете.
//
// Неизвестная монета (чужой id или чужой владелец) - ErrCoinNotFound ДО
// любых внешних вызовов. При refresh рыночный снимок перезаписывается
// целиком, затем заголовок заменяется (delete-then-insert); провал gateway
// оставляет запись нетронутой - мутация только после успешных fetch.
func (s *CoinService) Update(ctx context.Context, userID, id int, params UpdateCoinParams) (*CoinWithHeadline, error) {
	coin, err := s.coinRepo.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCoinNotFound) {
			return nil, ErrCoinNotFound
		}
		return nil, err
	}

	var refreshedHeadline *models.Headline
	refreshFoundArticle := false

	if params.Refresh {
		data, err := s.market.FetchCoin(ctx, coin.CoinID)
		if err != nil {
			utils.Warn("market data refresh failed",
				utils.Int("user_id", userID),
				utils.String("coin_id", coin.CoinID),
				utils.Err(err))
			return nil, err
		}

		articles, err := s.news.FetchNews(ctx, data.Symbol, 1)
		if err != nil {
			utils.Warn("news refresh failed",
				utils.Int("user_id", userID),
				utils.String("coin_id", coin.CoinID),
				utils.Err(err))
			return nil, err
		}

		// Перезапись целиком: refresh - это "текущая правда", не накопление
		coin.Symbol = data.Symbol
		coin.Name = data.Name
		coin.Price = data.Price
		coin.MarketCap = data.MarketCap
		coin.Change24h = data.Change24h

		if len(articles) > 0 {
			refreshedHeadline = headlineFromArticle(userID, coin.ID, articles[0])
			refreshFoundArticle = true
		}
	}

	if params.Notes != nil {
		coin.Notes = *params.Notes

		// Best-effort backfill: у старых записей symbol мог отсутствовать
		if coin.Symbol == "" && coin.CoinID != "" {
			coin.Symbol = strings.ToUpper(strings.SplitN(coin.CoinID, "-", 2)[0])
		}
	}

	if params.Notes != nil || params.Refresh {
		if err := s.coinRepo.Update(coin); err != nil {
			return nil, err
		}
	}

	if params.Refresh {
		// Ноль статей - валидный результат: старый заголовок удаляется
		// и не заменяется
		var replacement *models.Headline
		if refreshFoundArticle {
			replacement = refreshedHeadline
		}
		if err := s.newsRepo.Replace(userID, coin.ID, replacement); err != nil {
			return nil, err
		}
	}

	headline, err := s.newsRepo.Latest(userID, coin.ID)
	if err != nil {
		return nil, err
	}

	return &CoinWithHeadline{Coin: coin, Headline: headline}, nil
}

// Delete удаляет монету и каскадно все ее заголовки.
//
// Монета удаляется первой: осиротевший заголовок - допустимое переходное
// состояние, монета без владельца записи - нет.
func (s *CoinService) Delete(ctx context.Context, userID, id int) error {
	if err := s.coinRepo.Delete(userID, id); err != nil {
		if errors.Is(err, repository.ErrCoinNotFound) {
			return ErrCoinNotFound
		}
		return err
	}

	if err := s.newsRepo.DeleteByCoin(userID, id); err != nil {
		utils.Error("headline cascade delete failed",
			utils.Int("user_id", userID),
			utils.Int("coin_ref", id),
			utils.Err(err))
		return err
	}

	return nil
}

// TopCoins возвращает топ монет по рангу провайдера (публичный passthrough)
func (s *CoinService) TopCoins(ctx context.Context, limit int) ([]gateway.TopCoin, error) {
	return s.market.FetchTopCoins(ctx, limit)
}

// SearchPrice возвращает рыночный снимок одной монеты (публичный passthrough)
func (s *CoinService) SearchPrice(ctx context.Context, coinID string) (*gateway.CoinData, error) {
	coinID = strings.TrimSpace(coinID)
	if coinID == "" {
		return nil, ErrCoinIDRequired
	}
	return s.market.FetchCoin(ctx, coinID)
}

// SearchHeadline возвращает самый свежий заголовок по тикеру
// (публичный passthrough). nil без ошибки - статей не нашлось.
// Тикер нормализуется: пробелы обрезаются, регистр поднимается.
func (s *CoinService) SearchHeadline(ctx context.Context, symbol string) (*gateway.Article, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, nil
	}

	articles, err := s.news.FetchNews(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil
	}
	return &articles[0], nil
}

// headlineFromArticle конвертирует статью gateway в persisted заголовок
func headlineFromArticle(userID, coinID int, article gateway.Article) *models.Headline {
	return &models.Headline{
		UserID:      userID,
		CoinID:      coinID,
		Title:       article.Title,
		Description: article.Description,
		URL:         article.URL,
		ImageURL:    article.ImageURL,
		PublishedAt: article.PublishedAt,
	}
}
