package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/catalog/costing"
	"github.com/tillpoint/tillpoint/internal/catalog/products"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

// Catalog is the product lookup surface receipt creation needs.
type Catalog interface {
	Get(ctx context.Context, profileID, regNo int64) (products.Product, error)
	Components(ctx context.Context, profileID, regNo int64) ([]products.BundleComponent, error)
}

// Bumper invalidates cached report payloads after a ledger write.
type Bumper interface {
	Bump(ctx context.Context, profileID int64) error
}

type LineInput struct {
	ProductRegNo int64
	Units        decimal.Decimal
	Price        decimal.Decimal // zero means the catalog price applies
	Modifiers    []ModifierInput
}

type ModifierInput struct {
	ModifierRegNo int64
	ModifierName  string
	OptionName    string
	Amount        decimal.Decimal
}

type PaymentInput struct {
	MethodRegNo int64
	MethodName  string
	Amount      decimal.Decimal
}

type SaleInput struct {
	StoreRegNo     int64
	UserRegNo      int64
	DiscountRegNo  int64
	TaxRegNo       int64
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Timestamp      time.Time
	Lines          []LineInput
	Payments       []PaymentInput
}

type RefundInput struct {
	OriginalRegNo int64
	UserRegNo     int64
	Timestamp     time.Time
	Lines         []LineInput
	Payments      []PaymentInput
}

type Service struct {
	logger  *slog.Logger
	repo    Repository
	catalog Catalog
	costs   *costing.Resolver
	cache   Bumper
}

func NewService(logger *slog.Logger, repo Repository, catalog Catalog, source costing.Source, cache Bumper) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:  logger,
		repo:    repo,
		catalog: catalog,
		costs:   costing.NewResolver(source, logger),
		cache:   cache,
	}
}

func (s *Service) List(ctx context.Context, profileID int64, filters ListFilters) ([]Receipt, error) {
	return s.repo.List(ctx, profileID, filters)
}

func (s *Service) Get(ctx context.Context, profileID, regNo int64) (Receipt, error) {
	return s.repo.Get(ctx, profileID, regNo)
}

// CreateSale writes a sale receipt. Unit price, product name, category,
// variant parent and resolved unit cost are snapshotted onto each line
// so later catalog edits never rewrite history.
func (s *Service) CreateSale(ctx context.Context, profileID int64, input SaleInput) (Receipt, error) {
	if len(input.Lines) == 0 {
		return Receipt{}, fmt.Errorf("%w: a receipt requires at least one line", httpx.ErrValidation)
	}

	receipt := Receipt{
		ProfileID:      profileID,
		ReceiptCode:    uuid.NewString(),
		StoreRegNo:     input.StoreRegNo,
		UserRegNo:      input.UserRegNo,
		DiscountRegNo:  input.DiscountRegNo,
		TaxRegNo:       input.TaxRegNo,
		DiscountAmount: input.DiscountAmount,
		TaxAmount:      input.TaxAmount,
		Timestamp:      input.Timestamp,
	}
	if receipt.Timestamp.IsZero() {
		receipt.Timestamp = time.Now().UTC()
	}

	var deltas []StockDelta
	for _, in := range input.Lines {
		if in.Units.Sign() <= 0 {
			return Receipt{}, fmt.Errorf("%w: line units must be positive", httpx.ErrValidation)
		}
		product, err := s.catalog.Get(ctx, profileID, in.ProductRegNo)
		if err != nil {
			return Receipt{}, fmt.Errorf("%w: product %d not found", httpx.ErrValidation, in.ProductRegNo)
		}

		price := in.Price
		if price.IsZero() {
			price = product.Price
		}
		unitCost, err := s.costs.ResolveUnitCost(ctx, profileID, in.ProductRegNo)
		if err != nil {
			return Receipt{}, err
		}

		gross := price.Mul(in.Units)
		line := Line{
			ProductRegNo:  product.RegNo,
			ParentRegNo:   product.ParentRegNo,
			ProductName:   product.Name,
			CategoryRegNo: product.CategoryRegNo,
			IsBundle:      product.IsBundle,
			Price:         price,
			Units:         in.Units,
			GrossTotal:    gross,
			CostTotal:     unitCost.Mul(in.Units),
		}
		for _, m := range in.Modifiers {
			line.Modifiers = append(line.Modifiers, LineModifier{
				ModifierRegNo: m.ModifierRegNo,
				ModifierName:  m.ModifierName,
				OptionName:    m.OptionName,
				Amount:        m.Amount,
			})
			gross = gross.Add(m.Amount.Mul(in.Units))
		}
		if len(in.Modifiers) > 0 {
			line.GrossTotal = gross
		}
		receipt.Subtotal = receipt.Subtotal.Add(gross)
		receipt.Lines = append(receipt.Lines, line)

		lineDeltas, err := s.saleDeltas(ctx, profileID, input.StoreRegNo, product, in.Units)
		if err != nil {
			return Receipt{}, err
		}
		deltas = append(deltas, lineDeltas...)
	}

	receipt.Total = receipt.Subtotal.Sub(receipt.DiscountAmount).Add(receipt.TaxAmount)
	for _, p := range input.Payments {
		receipt.Payments = append(receipt.Payments, Payment{
			MethodRegNo: p.MethodRegNo,
			MethodName:  p.MethodName,
			Amount:      p.Amount,
		})
	}

	created, err := s.repo.Create(ctx, receipt, deltas, nil)
	if err != nil {
		return Receipt{}, err
	}
	s.bump(ctx, profileID)
	return created, nil
}

// saleDeltas maps one sold line to stock movements. Bundles consume
// their components; everything else consumes its own stock when
// tracked.
func (s *Service) saleDeltas(ctx context.Context, profileID, storeRegNo int64, product products.Product, units decimal.Decimal) ([]StockDelta, error) {
	if !product.IsBundle {
		if !product.TrackStock {
			return nil, nil
		}
		return []StockDelta{{ProductRegNo: product.RegNo, StoreRegNo: storeRegNo, Units: units.Neg()}}, nil
	}

	components, err := s.catalog.Components(ctx, profileID, product.RegNo)
	if err != nil {
		return nil, err
	}
	deltas := make([]StockDelta, 0, len(components))
	for _, c := range components {
		deltas = append(deltas, StockDelta{
			ProductRegNo: c.ComponentRegNo,
			StoreRegNo:   storeRegNo,
			Units:        c.Quantity.Mul(units).Neg(),
		})
	}
	return deltas, nil
}

// CreateRefund writes a refund receipt referencing the original. Each
// refunded quantity is capped by the originally sold quantity less any
// prior refunds; the cost snapshot is carried over proportionally.
func (s *Service) CreateRefund(ctx context.Context, profileID int64, input RefundInput) (Receipt, error) {
	if len(input.Lines) == 0 {
		return Receipt{}, fmt.Errorf("%w: a refund requires at least one line", httpx.ErrValidation)
	}
	original, err := s.repo.Get(ctx, profileID, input.OriginalRegNo)
	if err != nil {
		return Receipt{}, err
	}
	if original.IsRefund {
		return Receipt{}, fmt.Errorf("%w: cannot refund a refund", httpx.ErrValidation)
	}

	refund := Receipt{
		ProfileID:     profileID,
		ReceiptCode:   uuid.NewString(),
		StoreRegNo:    original.StoreRegNo,
		UserRegNo:     input.UserRegNo,
		Timestamp:     input.Timestamp,
		IsRefund:      true,
		OriginalRegNo: original.RegNo,
	}
	if refund.Timestamp.IsZero() {
		refund.Timestamp = time.Now().UTC()
	}
	if refund.UserRegNo == 0 {
		refund.UserRegNo = original.UserRegNo
	}

	var deltas []StockDelta
	var marks []RefundMark
	for _, in := range input.Lines {
		if in.Units.Sign() <= 0 {
			return Receipt{}, fmt.Errorf("%w: refund units must be positive", httpx.ErrValidation)
		}
		orig := findLine(original.Lines, in.ProductRegNo)
		if orig == nil {
			return Receipt{}, fmt.Errorf("%w: product %d is not on the original receipt", httpx.ErrValidation, in.ProductRegNo)
		}
		remaining := orig.Units.Sub(orig.RefundedUnits)
		if in.Units.Cmp(remaining) > 0 {
			return Receipt{}, fmt.Errorf("%w: refund exceeds sold quantity", httpx.ErrValidation)
		}

		gross := orig.Price.Mul(in.Units)
		cost := decimal.Zero
		if orig.Units.Sign() > 0 {
			cost = orig.CostTotal.Div(orig.Units).Mul(in.Units)
		}
		refund.Subtotal = refund.Subtotal.Add(gross)
		refund.Lines = append(refund.Lines, Line{
			ProductRegNo:  orig.ProductRegNo,
			ParentRegNo:   orig.ParentRegNo,
			ProductName:   orig.ProductName,
			CategoryRegNo: orig.CategoryRegNo,
			IsBundle:      orig.IsBundle,
			Price:         orig.Price,
			Units:         in.Units,
			GrossTotal:    gross,
			CostTotal:     cost,
		})
		marks = append(marks, RefundMark{LineID: orig.ID, Units: in.Units})
		if !orig.IsBundle {
			deltas = append(deltas, StockDelta{
				ProductRegNo: orig.ProductRegNo,
				StoreRegNo:   original.StoreRegNo,
				Units:        in.Units,
			})
		}
	}

	refund.Total = refund.Subtotal
	for _, p := range input.Payments {
		refund.Payments = append(refund.Payments, Payment{
			MethodRegNo: p.MethodRegNo,
			MethodName:  p.MethodName,
			Amount:      p.Amount,
		})
	}

	created, err := s.repo.Create(ctx, refund, deltas, marks)
	if err != nil {
		return Receipt{}, err
	}
	s.bump(ctx, profileID)
	return created, nil
}

func (s *Service) bump(ctx context.Context, profileID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, profileID); err != nil {
		s.logger.Warn("report cache bump failed", slog.Int64("profile_id", profileID), slog.Any("error", err))
	}
}

func findLine(lines []Line, productRegNo int64) *Line {
	for i := range lines {
		if lines[i].ProductRegNo == productRegNo {
			return &lines[i]
		}
	}
	return nil
}
