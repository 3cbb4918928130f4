package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/pkg/validator"
)

type SupplierService interface {
	ListSuppliers(search string) ([]model.Supplier, error)
	GetSupplier(id uuid.UUID) (*model.Supplier, error)
	CreateSupplier(req *SupplierRequest, actor Actor) (*model.Supplier, error)
	UpdateSupplier(id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error)
	DeleteSupplier(id uuid.UUID, actor Actor) error
	ImportSuppliers(r io.Reader, actor Actor) (*ImportResult, error)
}

type SupplierRequest struct {
	Name        string `json:"name" validate:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

func (r *SupplierRequest) apply(s *model.Supplier) {
	s.Name = strings.TrimSpace(r.Name)
	s.ContactName = r.ContactName
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
	s.Notes = r.Notes
}

// ImportResult summarises a spreadsheet import.
type ImportResult struct {
	TotalRows int      `json:"total_rows"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: repo}
}

func (s *supplierService) ListSuppliers(search string) ([]model.Supplier, error) {
	return s.supplierRepo.FindAll(search)
}

func (s *supplierService) GetSupplier(id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "supplier %s", id)
	}
	return supplier, nil
}

// checkNameFree fails with AlreadyExists while a supplier other than self,
// deleted or not, is called name.
func (s *supplierService) checkNameFree(name string, self uuid.UUID) error {
	existing, err := s.supplierRepo.FindByName(name)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return errors.Trace(err)
	case existing.ID == self:
		return nil
	case existing.DeletedAt.Valid:
		return errors.AlreadyExistsf("supplier %q (deleted)", name)
	}
	return errors.AlreadyExistsf("supplier %q", name)
}

func (s *supplierService) CreateSupplier(req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(strings.TrimSpace(req.Name), uuid.Nil); err != nil {
		return nil, err
	}
	supplier := &model.Supplier{}
	req.apply(supplier)
	supplier.Stamp(actor.ID, true)
	if err := s.supplierRepo.Create(supplier); err != nil {
		return nil, errors.Annotate(err, "creating supplier")
	}
	return supplier, nil
}

func (s *supplierService) UpdateSupplier(id uuid.UUID, req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "supplier %s", id)
	}
	if err := s.checkNameFree(strings.TrimSpace(req.Name), id); err != nil {
		return nil, err
	}
	req.apply(supplier)
	supplier.Stamp(actor.ID, false)
	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, errors.Annotate(err, "updating supplier")
	}
	return supplier, nil
}

// DeleteSupplier refuses while draft, ordered or partially received
// purchase orders still point at the supplier.
func (s *supplierService) DeleteSupplier(id uuid.UUID, actor Actor) error {
	open, err := s.supplierRepo.CountOpenPurchaseOrders(id)
	if err != nil {
		return errors.Trace(err)
	}
	if open > 0 {
		return errors.AlreadyExistsf("%d open purchase orders for supplier %s", open, id)
	}
	if err := s.supplierRepo.Delete(id, actor.ID); err != nil {
		return lookupError(err, "supplier %s", id)
	}
	return nil
}

// ImportSuppliers reads the first sheet of an xlsx workbook with columns
// NAME, CONTACT, EMAIL, PHONE, ADDRESS. Row 1 is the header. Suppliers are
// matched by name; matches are updated, the rest created.
func (s *supplierService) ImportSuppliers(r io.Reader, actor Actor) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewNotValid(err, "file is not a valid xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NotValidf("workbook without sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Annotate(err, "reading sheet")
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		result.TotalRows++
		req := SupplierRequest{
			Name:        cell(row, 0),
			ContactName: cell(row, 1),
			Email:       cell(row, 2),
			Phone:       cell(row, 3),
			Address:     cell(row, 4),
		}
		if req.Name == "" {
			result.Skipped++
			continue
		}
		if err := validator.Check(&req); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		existing, err := s.supplierRepo.FindByName(req.Name)
		switch {
		case err == nil && existing.DeletedAt.Valid:
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: supplier %q was deleted", i+1, req.Name))
		case err == nil:
			req.Notes = existing.Notes
			req.apply(existing)
			existing.Stamp(actor.ID, false)
			if err := s.supplierRepo.Update(existing); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				result.Skipped++
				continue
			}
			result.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			supplier := &model.Supplier{}
			req.apply(supplier)
			supplier.Stamp(actor.ID, true)
			if err := s.supplierRepo.Create(supplier); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				result.Skipped++
				continue
			}
			result.Created++
		default:
			return nil, errors.Annotatef(err, "row %d", i+1)
		}
	}
	logger.Infof("supplier import by %s: %d created, %d updated, %d skipped", actor.ID, result.Created, result.Updated, result.Skipped)
	return result, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
