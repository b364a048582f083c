package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tillpoint/tillpoint/internal/scope"
	"github.com/tillpoint/tillpoint/internal/shared"
)

// Query carries the validated report filters as requested by the
// caller, before scope narrowing.
type Query struct {
	After       time.Time
	Before      time.Time
	StoreRegNos []int64
	UserRegNos  []int64

	CategoryRegNo int64
	DiscountRegNo int64
	TaxRegNo      int64
	ProductRegNo  int64
	IsBundle      *bool
	StockStatus   string
}

// DimensionPayload is the common shape of every per-dimension report:
// rows plus the scope-filtered selectable dimensions.
type DimensionPayload struct {
	Rows   interface{}
	Users  []scope.UserRef
	Stores []scope.StoreRef
}

type Service struct {
	logger   *slog.Logger
	repo     Repository
	resolver *scope.Resolver
	cache    *Cache
	group    singleflight.Group
}

func NewService(logger *slog.Logger, repo Repository, resolver *scope.Resolver, cache *Cache) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, repo: repo, resolver: resolver, cache: cache}
}

// narrow intersects the requested filters with the resolved scope. An
// out-of-scope request silently narrows to nothing instead of erroring.
func narrowQuery(q Query, sc scope.AccessScope) Filters {
	return Filters{
		After:         q.After,
		Before:        q.Before,
		StoreRegNos:   sc.NarrowStores(q.StoreRegNos),
		UserRegNos:    sc.NarrowUsers(q.UserRegNos),
		CategoryRegNo: q.CategoryRegNo,
		DiscountRegNo: q.DiscountRegNo,
		TaxRegNo:      q.TaxRegNo,
		ProductRegNo:  q.ProductRegNo,
		IsBundle:      q.IsBundle,
		StockStatus:   q.StockStatus,
	}
}

// cacheKeyParts derives the cache key from the narrowed filters, not
// the raw query, so principals with different visibility never share a
// cached payload.
func cacheKeyParts(report string, f Filters) []string {
	parts := []string{report, f.After.Format("2006-01-02"), f.Before.Format("2006-01-02")}
	parts = append(parts, joinInts(f.StoreRegNos), joinInts(f.UserRegNos))
	if f.CategoryRegNo != 0 {
		parts = append(parts, "cat"+strconv.FormatInt(f.CategoryRegNo, 10))
	}
	if f.DiscountRegNo != 0 {
		parts = append(parts, "disc"+strconv.FormatInt(f.DiscountRegNo, 10))
	}
	if f.TaxRegNo != 0 {
		parts = append(parts, "tax"+strconv.FormatInt(f.TaxRegNo, 10))
	}
	if f.ProductRegNo != 0 {
		parts = append(parts, "prod"+strconv.FormatInt(f.ProductRegNo, 10))
	}
	if f.IsBundle != nil {
		parts = append(parts, "bundle"+strconv.FormatBool(*f.IsBundle))
	}
	if f.StockStatus != "" {
		parts = append(parts, f.StockStatus)
	}
	return parts
}

func joinInts(values []int64) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.FormatInt(v, 10))
	}
	return strings.Join(parts, ",")
}

// fetch loads the payload through the cache, deduplicating concurrent
// identical builds.
func (s *Service) fetch(ctx context.Context, profileID int64, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, profileID, parts...)
	if err != nil {
		// degrade to an uncached build when redis is unreachable
		s.logger.Warn("report cache key", slog.Any("error", err))
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	return s.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (interface{}, error) {
		value, err, _ := s.group.Do(key, func() (interface{}, error) {
			return loader(ctx)
		})
		return value, err
	})
}

// Summary builds the top-level summary report.
func (s *Service) Summary(ctx context.Context, principal *shared.Principal, q Query) (SummaryPayload, error) {
	sc, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return SummaryPayload{}, err
	}

	filters := narrowQuery(q, sc)
	var payload SummaryPayload
	err = s.fetch(ctx, principal.ProfileID, cacheKeyParts("summary", filters), &payload, func(ctx context.Context) (interface{}, error) {
		facts, err := s.repo.LineFacts(ctx, principal.ProfileID, filters)
		if err != nil {
			return nil, err
		}
		return BuildSummary(facts, filters, sc), nil
	})
	if err != nil {
		return SummaryPayload{}, err
	}
	payload.Users = sc.Users
	payload.Stores = sc.Stores
	return payload, nil
}

// UserReport builds the per-cashier report.
func (s *Service) UserReport(ctx context.Context, principal *shared.Principal, q Query) ([]DimensionRow, scope.AccessScope, error) {
	sc, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, scope.AccessScope{}, err
	}
	filters := narrowQuery(q, sc)
	var rows []DimensionRow
	err = s.fetch(ctx, principal.ProfileID, cacheKeyParts("users", filters), &rows, func(ctx context.Context) (interface{}, error) {
		facts, err := s.repo.LineFacts(ctx, principal.ProfileID, filters)
		if err != nil {
			return nil, err
		}
		return BuildUserReport(facts, sc), nil
	})
	return rows, sc, err
}

// CategoryReport builds the per-category report. Facts and dimension
// names load concurrently.
func (s *Service) CategoryReport(ctx context.Context, principal *shared.Principal, q Query) ([]DimensionRow, scope.AccessScope, error) {
	return s.namedDimensionReport(ctx, principal, q, "categories", s.repo.CategoryNames, BuildCategoryReport)
}

// DiscountReport builds the per-discount report.
func (s *Service) DiscountReport(ctx context.Context, principal *shared.Principal, q Query) ([]DimensionRow, scope.AccessScope, error) {
	return s.namedDimensionReport(ctx, principal, q, "discounts", s.repo.DiscountNames, BuildDiscountReport)
}

// TaxReport builds the per-tax report.
func (s *Service) TaxReport(ctx context.Context, principal *shared.Principal, q Query) ([]DimensionRow, scope.AccessScope, error) {
	return s.namedDimensionReport(ctx, principal, q, "taxes", s.repo.TaxNames, BuildTaxReport)
}

func (s *Service) namedDimensionReport(
	ctx context.Context,
	principal *shared.Principal,
	q Query,
	report string,
	nameLoader func(context.Context, int64) (map[int64]string, error),
	build func([]LineFact, map[int64]string, scope.AccessScope) []DimensionRow,
) ([]DimensionRow, scope.AccessScope, error) {
	sc, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, scope.AccessScope{}, err
	}

	filters := narrowQuery(q, sc)
	var rows []DimensionRow
	err = s.fetch(ctx, principal.ProfileID, cacheKeyParts(report, filters), &rows, func(ctx context.Context) (interface{}, error) {
		var facts []LineFact
		var names map[int64]string

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			facts, err = s.repo.LineFacts(gctx, principal.ProfileID, filters)
			return err
		})
		g.Go(func() error {
			var err error
			names, err = nameLoader(gctx, principal.ProfileID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return build(facts, names, sc), nil
	})
	return rows, sc, err
}

// ProductReport builds the per-product report with variant roll-up.
func (s *Service) ProductReport(ctx context.Context, principal *shared.Principal, q Query) ([]ProductRow, scope.AccessScope, error) {
	sc, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, scope.AccessScope{}, err
	}

	filters := narrowQuery(q, sc)
	var rows []ProductRow
	err = s.fetch(ctx, principal.ProfileID, cacheKeyParts("products", filters), &rows, func(ctx context.Context) (interface{}, error) {
		var facts []LineFact
		var names map[int64]string

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			facts, err = s.repo.LineFacts(gctx, principal.ProfileID, filters)
			return err
		})
		g.Go(func() error {
			var err error
			names, err = s.repo.ProductNames(gctx, principal.ProfileID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return BuildProductReport(facts, names, sc), nil
	})
	return rows, sc, err
}

// PaymentReport builds the per-payment-method report with its synthetic
// total row.
func (s *Service) PaymentReport(ctx context.Context, principal *shared.Principal, q Query) ([]PaymentRow, scope.AccessScope, error) {
	sc, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, scope.AccessScope{}, err
	}

	filters := narrowQuery(q, sc)
	var rows []PaymentRow
	err = s.fetch(ctx, principal.ProfileID, cacheKeyParts("payments", filters), &rows, func(ctx context.Context) (interface{}, error) {
		facts, err := s.repo.PaymentFacts(ctx, principal.ProfileID, filters)
		if err != nil {
			return nil, err
		}
		return BuildPaymentReport(facts), nil
	})
	return rows, sc, err
}

// ModifierReport builds the per-modifier report.
func (s *Service) ModifierReport(ctx context.Context, principal *shared.Principal, q Query) ([]ModifierRow, scope.AccessScope, error) {
	sc, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, scope.AccessScope{}, err
	}

	filters := narrowQuery(q, sc)
	var rows []ModifierRow
	err = s.fetch(ctx, principal.ProfileID, cacheKeyParts("modifiers", filters), &rows, func(ctx context.Context) (interface{}, error) {
		facts, err := s.repo.ModifierFacts(ctx, principal.ProfileID, filters)
		if err != nil {
			return nil, err
		}
		return BuildModifierReport(facts), nil
	})
	return rows, sc, err
}
