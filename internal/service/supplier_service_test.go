package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/testdb"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestImportSuppliers(t *testing.T) {
	db := testdb.Open(t)
	existing := testdb.Supplier(t, db, "Acme")
	svc := NewSupplierService(repository.NewSupplierRepo(db))

	file := workbook(t, [][]interface{}{
		{"NAME", "CONTACT", "EMAIL", "PHONE", "ADDRESS"},
		{"Acme", "Wile E.", "wile@acme.example.com", "555-1000", "Desert Rd 1"},
		{"Globex", "Hank", "hank@globex.example.com", "", "Cypress Creek"},
		{"", "nobody"},
		{"Initech", "Bill", "not-an-email"},
	})

	res, err := svc.ImportSuppliers(file, testActor)
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalRows)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "row 5:"))

	acme, err := svc.GetSupplier(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wile E.", acme.ContactName)

	all, err := svc.ListSuppliers("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportSuppliersRejectsGarbage(t *testing.T) {
	db := testdb.Open(t)
	svc := NewSupplierService(repository.NewSupplierRepo(db))

	_, err := svc.ImportSuppliers(strings.NewReader("NAME,EMAIL\nAcme,a@b.c\n"), testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestSupplierNamesAreUnique(t *testing.T) {
	db := testdb.Open(t)
	svc := NewSupplierService(repository.NewSupplierRepo(db))

	_, err := svc.CreateSupplier(&SupplierRequest{Name: "Acme"}, testActor)
	require.NoError(t, err)
	_, err = svc.CreateSupplier(&SupplierRequest{Name: "Acme"}, testActor)
	assert.True(t, errors.Is(err, errors.AlreadyExists))
}

func TestDeletedSupplierKeepsItsName(t *testing.T) {
	db := testdb.Open(t)
	svc := NewSupplierService(repository.NewSupplierRepo(db))

	acme, err := svc.CreateSupplier(&SupplierRequest{Name: "Acme"}, testActor)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSupplier(acme.ID, testActor))

	_, err = svc.CreateSupplier(&SupplierRequest{Name: "Acme"}, testActor)
	assert.True(t, errors.Is(err, errors.AlreadyExists), "got %v", err)

	globex := testdb.Supplier(t, db, "Globex")
	_, err = svc.UpdateSupplier(globex.ID, &SupplierRequest{Name: "Acme"}, testActor)
	assert.True(t, errors.Is(err, errors.AlreadyExists), "got %v", err)

	res, err := svc.ImportSuppliers(workbook(t, [][]interface{}{
		{"NAME", "CONTACT", "EMAIL", "PHONE", "ADDRESS"},
		{"Acme", "Wile E."},
	}), testActor)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Created+res.Updated)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "row 2:"))
}

type brokenSupplierRepo struct {
	repository.SupplierRepository
}

func (brokenSupplierRepo) FindByName(string) (*model.Supplier, error) {
	return nil, errors.New("connection reset")
}

func TestSupplierNameLookupFailureIsReported(t *testing.T) {
	db := testdb.Open(t)
	globex := testdb.Supplier(t, db, "Globex")
	svc := NewSupplierService(brokenSupplierRepo{repository.NewSupplierRepo(db)})

	_, err := svc.CreateSupplier(&SupplierRequest{Name: "Acme"}, testActor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	_, err = svc.UpdateSupplier(globex.ID, &SupplierRequest{Name: "Acme"}, testActor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDeleteSupplierWithOpenPurchaseOrder(t *testing.T) {
	db := testdb.Open(t)
	s := testdb.Supplier(t, db, "Acme")
	p := testdb.Product(t, db, "A", 0, "1.00")
	svc := NewSupplierService(repository.NewSupplierRepo(db))

	pos := newPurchaseOrderService(db)
	_, err := pos.CreatePurchaseOrder(&CreatePurchaseOrderRequest{
		SupplierID: s.ID,
		Items:      []PurchaseOrderItemInput{{ProductID: p.ID, QuantityOrdered: 1}},
	}, testActor)
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.DeleteSupplier(s.ID, testActor), errors.AlreadyExists))

	free := testdb.Supplier(t, db, "Free")
	require.NoError(t, svc.DeleteSupplier(free.ID, testActor))
	_, err = svc.GetSupplier(free.ID)
	assert.True(t, errors.Is(err, errors.NotFound))

	var count int64
	require.NoError(t, db.Unscoped().Model(&model.Supplier{}).Where("deleted_by = ?", testActor.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
