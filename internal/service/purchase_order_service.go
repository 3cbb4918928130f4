package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-backoffice-api/internal/metrics"
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/ws"
	"go-backoffice-api/pkg/idgen"
	"go-backoffice-api/pkg/money"
	"go-backoffice-api/pkg/validator"
)

type PurchaseOrderService interface {
	ListPurchaseOrders(filter repository.PurchaseOrderFilter) ([]model.PurchaseOrder, error)
	GetPurchaseOrder(id uuid.UUID) (*model.PurchaseOrder, error)
	CreatePurchaseOrder(req *CreatePurchaseOrderRequest, actor Actor) (*model.PurchaseOrder, error)
	UpdatePurchaseOrder(id uuid.UUID, req *UpdatePurchaseOrderRequest, actor Actor) (*model.PurchaseOrder, error)
	DeletePurchaseOrder(id uuid.UUID, actor Actor) error
	Receive(id uuid.UUID, lines []ReceiveLine, actor Actor) (*model.PurchaseOrder, error)
}

type PurchaseOrderItemInput struct {
	ProductID       uuid.UUID       `json:"product_id" validate:"uuid_required"`
	QuantityOrdered int             `json:"quantity_ordered" validate:"gt=0"`
	UnitCost        decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID                 `json:"supplier_id" validate:"uuid_required"`
	Status       model.PurchaseOrderStatus `json:"status" validate:"omitempty,oneof=draft ordered"`
	ExpectedDate *time.Time                `json:"expected_date"`
	Notes        string                    `json:"notes"`
	Items        []PurchaseOrderItemInput  `json:"items" validate:"required,min=1,dive"`
}

type UpdatePurchaseOrderRequest struct {
	Status       *model.PurchaseOrderStatus `json:"status"`
	ExpectedDate *time.Time                 `json:"expected_date"`
	Notes        *string                    `json:"notes"`
}

// ReceiveLine sets the cumulative quantity received for one PO item.
type ReceiveLine struct {
	ID               uuid.UUID `json:"id"`
	QuantityReceived int       `json:"quantity_received"`
}

var poTransitions = map[model.PurchaseOrderStatus][]model.PurchaseOrderStatus{
	model.PODraft:   {model.POOrdered, model.POCancelled},
	model.POOrdered: {model.POCancelled},
}

type purchaseOrderService struct {
	poRepo       repository.PurchaseOrderRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	db           *gorm.DB
	wsHub        *ws.Hub
	now          func() time.Time
}

func NewPurchaseOrderService(poRepo repository.PurchaseOrderRepository, pRepo repository.ProductRepository, sRepo repository.SupplierRepository, db *gorm.DB, hub *ws.Hub) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:       poRepo,
		productRepo:  pRepo,
		supplierRepo: sRepo,
		db:           db,
		wsHub:        hub,
		now:          time.Now,
	}
}

func (s *purchaseOrderService) ListPurchaseOrders(filter repository.PurchaseOrderFilter) ([]model.PurchaseOrder, error) {
	return s.poRepo.FindAll(filter)
}

func (s *purchaseOrderService) GetPurchaseOrder(id uuid.UUID) (*model.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "purchase order %s", id)
	}
	return po, nil
}

func (s *purchaseOrderService) CreatePurchaseOrder(req *CreatePurchaseOrderRequest, actor Actor) (*model.PurchaseOrder, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.supplierRepo.FindByID(req.SupplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotValidf("supplier %s", req.SupplierID)
		}
		return nil, errors.Trace(err)
	}

	po := &model.PurchaseOrder{
		PONumber:     idgen.Next(idgen.PrefixPurchaseOrder),
		SupplierID:   req.SupplierID,
		Status:       model.PODraft,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
	}
	if req.Status == model.POOrdered {
		now := s.now()
		po.Status = model.POOrdered
		po.OrderDate = &now
	}
	po.Stamp(actor.ID, true)

	var lineTotals []decimal.Decimal
	for _, in := range req.Items {
		if _, err := s.productRepo.FindByID(in.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.NotValidf("product %s", in.ProductID)
			}
			return nil, errors.Trace(err)
		}
		item := model.PurchaseOrderItem{
			ProductID:       in.ProductID,
			QuantityOrdered: in.QuantityOrdered,
			UnitCost:        in.UnitCost.Round(money.Cents),
		}
		item.Stamp(actor.ID, true)
		po.Items = append(po.Items, item)
		lineTotals = append(lineTotals, money.LineTotal(item.QuantityOrdered, item.UnitCost))
	}
	po.Total = money.Sum(lineTotals...)

	if err := s.poRepo.Create(po); err != nil {
		return nil, errors.Annotate(err, "creating purchase order")
	}
	logger.Infof("purchase order %s created by %s", po.PONumber, actor.ID)
	return s.poRepo.FindByID(po.ID)
}

func (s *purchaseOrderService) UpdatePurchaseOrder(id uuid.UUID, req *UpdatePurchaseOrderRequest, actor Actor) (*model.PurchaseOrder, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, id)
		if err != nil {
			return lookupError(err, "purchase order %s", id)
		}
		if req.Status != nil && *req.Status != po.Status {
			allowed := false
			for _, next := range poTransitions[po.Status] {
				if next == *req.Status {
					allowed = true
				}
			}
			if !allowed {
				return errors.NotValidf("status change from %s to %s", po.Status, *req.Status)
			}
			if *req.Status == model.POOrdered {
				now := s.now()
				po.OrderDate = &now
			}
			po.Status = *req.Status
		}
		if req.ExpectedDate != nil {
			po.ExpectedDate = req.ExpectedDate
		}
		if req.Notes != nil {
			po.Notes = *req.Notes
		}
		po.Stamp(actor.ID, false)
		return s.poRepo.Save(tx, po)
	})
	if err != nil {
		return nil, err
	}
	return s.poRepo.FindByID(id)
}

// DeletePurchaseOrder only removes drafts; anything sent to a supplier is
// cancelled instead.
func (s *purchaseOrderService) DeletePurchaseOrder(id uuid.UUID, actor Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, id)
		if err != nil {
			return lookupError(err, "purchase order %s", id)
		}
		if po.Status != model.PODraft {
			return errors.NotValidf("deleting %s purchase order", po.Status)
		}
		return s.poRepo.Delete(tx, id, actor.ID)
	})
}

// Receive books goods against a purchase order. Each line carries the new
// cumulative received quantity of one item, which may not go down or past
// the ordered quantity. Stock grows by the difference. All lines, the stock
// changes and the resulting PO status are written in one transaction.
func (s *purchaseOrderService) Receive(id uuid.UUID, lines []ReceiveLine, actor Actor) (*model.PurchaseOrder, error) {
	if len(lines) == 0 {
		return nil, errors.NotValidf("empty receipt")
	}

	var received []model.Product
	var status model.PurchaseOrderStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, id)
		if err != nil {
			return lookupError(err, "purchase order %s", id)
		}
		if !po.Status.Receivable() {
			return errors.NotValidf("receiving against %s purchase order", po.Status)
		}

		index := make(map[uuid.UUID]int, len(po.Items))
		for i, it := range po.Items {
			index[it.ID] = i
		}
		seen := map[uuid.UUID]bool{}
		for _, line := range lines {
			i, ok := index[line.ID]
			if !ok {
				return errors.NotValidf("item %s on purchase order %s", line.ID, po.PONumber)
			}
			if seen[line.ID] {
				return errors.NotValidf("duplicate item %s in receipt", line.ID)
			}
			seen[line.ID] = true

			item := &po.Items[i]
			if line.QuantityReceived < item.QuantityReceived {
				return errors.NotValidf("quantity received %d below previously received %d", line.QuantityReceived, item.QuantityReceived)
			}
			if line.QuantityReceived > item.QuantityOrdered {
				return errors.NotValidf("quantity received %d above ordered %d", line.QuantityReceived, item.QuantityOrdered)
			}
			delta := line.QuantityReceived - item.QuantityReceived
			if delta == 0 {
				continue
			}

			product, err := s.productRepo.LockByID(tx, item.ProductID)
			if err != nil {
				return lookupError(err, "product %s", item.ProductID)
			}
			if err := s.productRepo.AdjustStock(tx, product.ID, delta, actor.ID); err != nil {
				return errors.Annotatef(err, "updating stock of %s", product.SKU)
			}
			if err := s.poRepo.UpdateItemReceived(tx, item.ID, line.QuantityReceived, actor.ID); err != nil {
				return errors.Annotate(err, "updating purchase order item")
			}
			item.QuantityReceived = line.QuantityReceived
			product.Stock += delta
			received = append(received, *product)
		}

		po.Status = model.ReceiptStatus(po.Status, po.Items)
		if po.Status == model.POReceived {
			now := s.now()
			po.ReceivedAt = &now
		}
		status = po.Status
		po.Stamp(actor.ID, false)
		return s.poRepo.Save(tx, po)
	})
	if err != nil {
		return nil, err
	}

	metrics.PurchaseOrderReceipts.WithLabelValues(string(status)).Inc()
	po, err := s.poRepo.FindByID(id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s.wsHub.Publish(ws.Event{
		"type":      "purchase_order_received",
		"po_id":     po.ID,
		"po_number": po.PONumber,
		"status":    po.Status,
		"user":      actor,
		"message":   fmt.Sprintf("%s received goods on %s", actor.Name, po.PONumber),
	})
	for i := range received {
		s.wsHub.Publish(ws.Event{
			"type":    "stock_update",
			"action":  "purchase_order_received",
			"product": stockPayload(&received[i]),
			"user":    actor,
		})
	}
	return po, nil
}
