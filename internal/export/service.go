// Package export builds the full JSON backup the school keeps offline.
// Password hashes never leave the database.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/internal/bazaar"
	"github.com/lsalmeida/ecoeletronico-backend/internal/terms"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
)

// Backup is the exported document.
type Backup struct {
	GeneratedAt time.Time            `json:"generated_at"`
	CurrentTerm int                  `json:"current_term"`
	Accounts    []accounts.AccountDTO `json:"accounts"`
	Submissions []SubmissionRecord   `json:"submissions"`
	Redemptions []RedemptionRecord   `json:"redemptions"`
	Snapshots   []terms.SnapshotDTO  `json:"term_snapshots"`
	Vouchers    []bazaar.VoucherDTO  `json:"bazaar_vouchers"`
	Impact      []ImpactRecord       `json:"impact_events"`
}

type termReader interface {
	Current(ctx context.Context) (int, error)
}

// Service produces the backup document.
type Service interface {
	Export(ctx context.Context) (*Backup, error)
}

type service struct {
	repo  Repository
	terms termReader
}

// NewService constructs an export service.
func NewService(repo Repository, terms termReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("export repository is required")
	}
	if terms == nil {
		return nil, fmt.Errorf("terms reader is required")
	}
	return &service{repo: repo, terms: terms}, nil
}

func (s *service) Export(ctx context.Context) (*Backup, error) {
	term, err := s.terms.Current(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current term")
	}

	backup := &Backup{
		GeneratedAt: time.Now().UTC(),
		CurrentTerm: term,
	}

	accountRows, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export accounts")
	}
	backup.Accounts = make([]accounts.AccountDTO, 0, len(accountRows))
	for i := range accountRows {
		backup.Accounts = append(backup.Accounts, *accounts.FromModel(&accountRows[i]))
	}

	submissionRows, err := s.repo.ListSubmissions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export submissions")
	}
	backup.Submissions = make([]SubmissionRecord, 0, len(submissionRows))
	for i := range submissionRows {
		backup.Submissions = append(backup.Submissions, submissionRecordFromModel(&submissionRows[i]))
	}

	redemptionRows, err := s.repo.ListRedemptions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export redemptions")
	}
	backup.Redemptions = make([]RedemptionRecord, 0, len(redemptionRows))
	for i := range redemptionRows {
		backup.Redemptions = append(backup.Redemptions, redemptionRecordFromModel(&redemptionRows[i]))
	}

	snapshotRows, err := s.repo.ListSnapshots(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export snapshots")
	}
	backup.Snapshots = make([]terms.SnapshotDTO, 0, len(snapshotRows))
	for i := range snapshotRows {
		dto, err := terms.SnapshotFromModel(&snapshotRows[i])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode snapshot")
		}
		backup.Snapshots = append(backup.Snapshots, *dto)
	}

	voucherRows, err := s.repo.ListVouchers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export vouchers")
	}
	backup.Vouchers = make([]bazaar.VoucherDTO, 0, len(voucherRows))
	for i := range voucherRows {
		backup.Vouchers = append(backup.Vouchers, *bazaar.VoucherFromModel(&voucherRows[i]))
	}

	impactRows, err := s.repo.ListImpactEvents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export impact events")
	}
	backup.Impact = make([]ImpactRecord, 0, len(impactRows))
	for i := range impactRows {
		backup.Impact = append(backup.Impact, impactRecordFromModel(&impactRows[i]))
	}

	return backup, nil
}
