package report

import (
	"context"

	"farmmarket/internal/domain"
	reportrepo "farmmarket/internal/repository/report"
)

type reportRepo interface {
	Create(ctx context.Context, in reportrepo.CreateReportInput) (*domain.VendorReport, error)
	ListAll(ctx context.Context) ([]domain.VendorReport, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.VendorReport, error)
	OpenCount(ctx context.Context, vendorID string) (int, error)
	Resolve(ctx context.Context, id, status string, adminNotes *string) (*domain.VendorReport, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Service struct {
	repo  reportRepo
	users userRepo
}

func New(repo reportrepo.Repository, users userRepo) *Service {
	return &Service{repo: repo, users: users}
}

type FileInput struct {
	VendorID    string  `json:"vendor_id"`
	ProductID   *string `json:"product_id,omitempty"`
	ReportType  string  `json:"report_type"`
	Description *string `json:"description,omitempty"`
}

func (s *Service) File(ctx context.Context, customerID string, in FileInput) (*domain.VendorReport, error) {
	if in.ReportType == "" {
		return nil, domain.Validationf("report type is required")
	}
	v, err := s.users.GetByID(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}
	if v.Role != domain.RoleVendor {
		return nil, domain.Validationf("reported user is not a vendor")
	}
	return s.repo.Create(ctx, reportrepo.CreateReportInput{
		CustomerID:  customerID,
		VendorID:    in.VendorID,
		ProductID:   in.ProductID,
		ReportType:  in.ReportType,
		Description: in.Description,
	})
}

func (s *Service) ListAll(ctx context.Context) ([]domain.VendorReport, error) {
	reports, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []domain.VendorReport{}
	}
	return reports, nil
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]domain.VendorReport, error) {
	reports, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []domain.VendorReport{}
	}
	return reports, nil
}

// Suspended reports whether a vendor has accumulated enough unresolved
// reports to lose publishing rights.
func (s *Service) Suspended(ctx context.Context, vendorID string) (bool, error) {
	n, err := s.repo.OpenCount(ctx, vendorID)
	if err != nil {
		return false, err
	}
	return n >= domain.SuspensionThreshold, nil
}

type ResolveInput struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

func (s *Service) Resolve(ctx context.Context, id string, in ResolveInput) (*domain.VendorReport, error) {
	switch in.Status {
	case domain.ReportResolved, domain.ReportDismissed, domain.ReportOpen:
	default:
		return nil, domain.Validationf("invalid report status %q", in.Status)
	}
	return s.repo.Resolve(ctx, id, in.Status, in.AdminNotes)
}
