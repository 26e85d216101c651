package bazaar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/metrics"
)

// Service defines the bazaar voucher window and ticket operations.
type Service interface {
	Window(ctx context.Context) (*WindowDTO, error)
	OpenWindow(ctx context.Context) (*WindowDTO, error)
	CloseWindow(ctx context.Context) (*WindowDTO, error)
	Purchase(ctx context.Context, accountID uuid.UUID) (*VoucherDTO, error)
	MyVouchers(ctx context.Context, accountID uuid.UUID) ([]VoucherDTO, error)
	Verify(ctx context.Context, code string) (*VoucherDTO, error)
	Use(ctx context.Context, req UseRequest) (*VoucherDTO, error)
	Stats(ctx context.Context) (*Stats, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type termReader interface {
	Current(ctx context.Context) (int, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	accounts accounts.Repository
	terms    termReader
	cfg      config.BazaarConfig
	metrics  *metrics.DecisionMetrics
}

// ServiceParams bundles the dependencies required to build a bazaar service.
type ServiceParams struct {
	TxRunner txRunner
	Repo     Repository
	Accounts accounts.Repository
	Terms    termReader
	Config   config.BazaarConfig
	Metrics  *metrics.DecisionMetrics
}

// NewService constructs a bazaar service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("bazaar repository is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	if params.Terms == nil {
		return nil, fmt.Errorf("terms reader is required")
	}
	return &service{
		tx:       params.TxRunner,
		repo:     params.Repo,
		accounts: params.Accounts,
		terms:    params.Terms,
		cfg:      params.Config,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) Window(ctx context.Context) (*WindowDTO, error) {
	window, err := s.repo.Window(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bazaar window")
	}
	return WindowFromModel(window), nil
}

func (s *service) OpenWindow(ctx context.Context) (*WindowDTO, error) {
	return s.setWindow(ctx, true)
}

func (s *service) CloseWindow(ctx context.Context) (*WindowDTO, error) {
	return s.setWindow(ctx, false)
}

func (s *service) setWindow(ctx context.Context, open bool) (*WindowDTO, error) {
	term, err := s.terms.Current(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current term")
	}

	if _, err := s.repo.Window(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bazaar window")
	}
	if err := s.repo.SetWindow(ctx, open, term, time.Now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update bazaar window")
	}
	return s.Window(ctx)
}

// Purchase debits the voucher cost and issues the ticket in a single
// transaction. Sales only happen while the window is open.
func (s *service) Purchase(ctx context.Context, accountID uuid.UUID) (*VoucherDTO, error) {
	window, err := s.repo.Window(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bazaar window")
	}
	if !window.Open {
		return nil, pkgerrors.New(pkgerrors.CodeWindowClosed, "bazaar voucher sales are closed")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}

	cost := decimal.NewFromInt(int64(s.cfg.VoucherCost))
	voucher := &models.BazaarVoucher{
		Code:        newVoucherCode(window.Term),
		AccountID:   account.ID,
		AccountName: account.Name,
		ClassGroup:  account.ClassGroup,
		Term:        window.Term,
		Cost:        cost,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		debited, err := s.accounts.WithTx(tx).AdjustBalance(ctx, accountID, cost.Neg())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit points")
		}
		if !debited {
			return pkgerrors.New(pkgerrors.CodeInsufficientPoints, "insufficient points for a voucher")
		}
		if err := s.repo.WithTx(tx).CreateVoucher(ctx, voucher); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create voucher")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncVoucherEvent("purchased")
	return VoucherFromModel(voucher), nil
}

func (s *service) MyVouchers(ctx context.Context, accountID uuid.UUID) ([]VoucherDTO, error) {
	rows, err := s.repo.ListVouchersByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}
	out := make([]VoucherDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *VoucherFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Verify(ctx context.Context, code string) (*VoucherDTO, error) {
	voucher, err := s.findVoucher(ctx, code)
	if err != nil {
		return nil, err
	}
	return VoucherFromModel(voucher), nil
}

func (s *service) Use(ctx context.Context, req UseRequest) (*VoucherDTO, error) {
	voucher, err := s.findVoucher(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if voucher.Used {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyResolved, "voucher already used")
	}

	now := time.Now().UTC()
	ok, err := s.repo.MarkUsedIfUnused(ctx, voucher.ID, now, req.Notes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark voucher used")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyResolved, "voucher already used")
	}

	s.metrics.IncVoucherEvent("used")
	voucher.Used = true
	voucher.UsedAt = &now
	if req.Notes != nil {
		voucher.Notes = req.Notes
	}
	return VoucherFromModel(voucher), nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	window, err := s.repo.Window(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bazaar window")
	}
	total, used, err := s.repo.CountByTerm(ctx, window.Term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vouchers")
	}
	return &Stats{
		Term:   window.Term,
		Open:   window.Open,
		Total:  total,
		Used:   used,
		Unused: total - used,
	}, nil
}

func (s *service) findVoucher(ctx context.Context, code string) (*models.BazaarVoucher, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher code required")
	}
	voucher, err := s.repo.FindVoucherByCode(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup voucher")
	}
	return voucher, nil
}

func newVoucherCode(term int) string {
	return fmt.Sprintf("BAZAR-T%d-%d", term, time.Now().UnixMilli())
}
