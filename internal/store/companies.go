package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fleet-service-backend/internal/model"
)

func (s *gormStore) ListCompanies(ctx context.Context) ([]model.ServiceCompany, error) {
	var companies []model.ServiceCompany
	err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list service companies: %w", err)
	}
	return companies, nil
}

func (s *gormStore) CompanyByID(ctx context.Context, id int64) (*model.ServiceCompany, error) {
	var company model.ServiceCompany
	err := s.db.WithContext(ctx).First(&company, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up service company %d: %w", id, err)
	}
	return &company, nil
}

// CompanyByManager implements scope.CompanyDirectory. A miss returns
// (nil, nil) so the resolver can degrade to the client tier.
func (s *gormStore) CompanyByManager(ctx context.Context, userID int64) (*model.ServiceCompany, error) {
	var company model.ServiceCompany
	err := s.db.WithContext(ctx).Where("manager_id = ?", userID).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up company managed by user %d: %w", userID, err)
	}
	return &company, nil
}

// CompanyOfMember honors both managership and roster membership. Used only
// for the informational role classification, never for scoping.
func (s *gormStore) CompanyOfMember(ctx context.Context, userID int64) (*model.ServiceCompany, error) {
	company, err := s.CompanyByManager(ctx, userID)
	if err != nil || company != nil {
		return company, err
	}

	var rostered model.ServiceCompany
	err = s.db.WithContext(ctx).
		Joins("JOIN service_company_members scm ON scm.service_company_id = service_companies.id").
		Where("scm.user_id = ?", userID).
		Order("service_companies.id ASC").
		First(&rostered).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up roster membership of user %d: %w", userID, err)
	}
	return &rostered, nil
}

func (s *gormStore) CreateCompany(ctx context.Context, company *model.ServiceCompany) error {
	verr := newValidationError()
	if company.Name == "" {
		verr.add("name", "required")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&model.ServiceCompany{}).
		Where("name = ?", company.Name).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check company uniqueness: %w", err)
	}
	if count > 0 {
		verr.add("name", "already exists")
		return verr
	}

	if company.ManagerID != nil {
		existing, err := s.CompanyByManager(ctx, *company.ManagerID)
		if err != nil {
			return err
		}
		if existing != nil {
			verr.add("manager_id", "user already manages another company")
			return verr
		}
	}

	if err := s.db.WithContext(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("failed to create service company: %w", err)
	}
	return nil
}

// DeleteCompany rejects the delete while any machine or event still points at
// the company, either as its scope key or as a performing organization.
func (s *gormStore) DeleteCompany(ctx context.Context, id int64) error {
	if _, err := s.CompanyByID(ctx, id); err != nil {
		return err
	}

	counts := []struct {
		query *gorm.DB
		field string
	}{
		{s.db.WithContext(ctx).Model(&model.Machine{}).Where("service_company_id = ?", id), "machines"},
		{s.db.WithContext(ctx).Model(&model.Maintenance{}).Where("service_company_id = ? OR organization_id = ?", id, id), "maintenances"},
		{s.db.WithContext(ctx).Model(&model.Claim{}).Where("service_company_id = ?", id), "claims"},
	}
	for _, c := range counts {
		var n int64
		if err := c.query.Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count %s referencing company %d: %w", c.field, id, err)
		}
		if n > 0 {
			verr := newValidationError()
			verr.add("id", fmt.Sprintf("service company is still referenced by %s and cannot be deleted", c.field))
			return verr
		}
	}

	if err := s.db.WithContext(ctx).Delete(&model.ServiceCompany{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete service company %d: %w", id, err)
	}
	return nil
}

// OrganizationChoices returns the selectable "performed by" labels: the
// self-service sentinel plus every company name. Recomputed on every call;
// company rows can change between requests.
func (s *gormStore) OrganizationChoices(ctx context.Context) ([]string, error) {
	companies, err := s.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	choices := make([]string, 0, len(companies)+1)
	choices = append(choices, model.SelfService)
	for _, c := range companies {
		choices = append(choices, c.Name)
	}
	return choices, nil
}
