package model

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the API owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Privilege{}, &Role{}, &User{},
		&Supplier{}, &Product{},
		&Order{}, &OrderItem{},
		&PurchaseOrder{}, &PurchaseOrderItem{},
		&Ticket{}, &TicketActivity{},
		&SmsCampaign{},
	)
}
