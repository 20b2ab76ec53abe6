package gold

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yousefshawky/zakatyyy/internal/database"
	"github.com/yousefshawky/zakatyyy/internal/zakat"
)

// PriceStore is the persistence needed by the service. *database.DB
// satisfies it; tests can substitute an in-memory implementation.
type PriceStore interface {
	GetGoldPrice(ctx context.Context, day string) (*database.GoldPrice, error)
	PutGoldPrice(ctx context.Context, day string, price decimal.Decimal, fetchedAt time.Time) error
}

// Fetcher retrieves the current per-ounce gold quote.
type Fetcher interface {
	FetchOuncePrice(ctx context.Context) (decimal.Decimal, error)
}

// Service serves the Nisaab price through a per-calendar-day cache.
// A cached value is valid for the whole day it was fetched on; the first
// request of a new day refetches and overwrites.
type Service struct {
	store  PriceStore
	client Fetcher
	logger *slog.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewService creates a price service backed by the given store and feed.
func NewService(store PriceStore, client Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// NisaabPrice returns today's Nisaab value (85g of gold, USD).
//
// Fetch failure is soft: ok is false and the caller renders the page
// without a Nisaab value. Cache read/write failures are logged and
// degrade to a plain fetch rather than failing the request.
func (s *Service) NisaabPrice(ctx context.Context) (price decimal.Decimal, ok bool) {
	day := zakat.FormatDate(s.now())

	cached, err := s.store.GetGoldPrice(ctx, day)
	if err == nil {
		s.logger.Debug("using cached gold price",
			slog.String("day", day),
			slog.String("price", cached.Price.String()),
		)
		return cached.Price, true
	}
	if !database.IsNotFound(err) {
		s.logger.Warn("gold price cache read failed", slog.Any("error", err))
	}

	perOunce, err := s.client.FetchOuncePrice(ctx)
	if err != nil {
		s.logger.Error("gold price fetch failed", slog.Any("error", err))
		return decimal.Zero, false
	}

	nisaab := NisaabFromOunce(perOunce)
	s.logger.Debug("fetched gold price",
		slog.String("per_ounce", perOunce.String()),
		slog.String("nisaab", nisaab.String()),
	)

	if err := s.store.PutGoldPrice(ctx, day, nisaab, s.now()); err != nil {
		// The price is still usable for this request.
		s.logger.Warn("gold price cache write failed", slog.Any("error", err))
	}

	return nisaab, true
}
