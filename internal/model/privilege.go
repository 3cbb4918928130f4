package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "order:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Order"
}

// Privilege codes checked by the router.
const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivSupplierView   = "supplier:view"
	PrivSupplierCreate = "supplier:create"
	PrivSupplierUpdate = "supplier:update"
	PrivSupplierDelete = "supplier:delete"

	PrivOrderView   = "order:view"
	PrivOrderCreate = "order:create"
	PrivOrderUpdate = "order:update"
	PrivOrderDelete = "order:delete"

	PrivPurchaseOrderView    = "purchase_order:view"
	PrivPurchaseOrderCreate  = "purchase_order:create"
	PrivPurchaseOrderUpdate  = "purchase_order:update"
	PrivPurchaseOrderDelete  = "purchase_order:delete"
	PrivPurchaseOrderReceive = "purchase_order:receive"

	PrivTicketView   = "ticket:view"
	PrivTicketCreate = "ticket:create"
	PrivTicketUpdate = "ticket:update"
	PrivTicketDelete = "ticket:delete"

	PrivSmsView   = "sms:view"
	PrivSmsManage = "sms:manage"
	PrivSmsSend   = "sms:send"

	PrivDashboardView = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},

	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},

	{Code: PrivSupplierView, Name: "View Supplier"},
	{Code: PrivSupplierCreate, Name: "Create Supplier"},
	{Code: PrivSupplierUpdate, Name: "Update Supplier"},
	{Code: PrivSupplierDelete, Name: "Delete Supplier"},

	{Code: PrivOrderView, Name: "View Order"},
	{Code: PrivOrderCreate, Name: "Create Order"},
	{Code: PrivOrderUpdate, Name: "Update Order"},
	{Code: PrivOrderDelete, Name: "Delete Order"},

	{Code: PrivPurchaseOrderView, Name: "View Purchase Order"},
	{Code: PrivPurchaseOrderCreate, Name: "Create Purchase Order"},
	{Code: PrivPurchaseOrderUpdate, Name: "Update Purchase Order"},
	{Code: PrivPurchaseOrderDelete, Name: "Delete Purchase Order"},
	{Code: PrivPurchaseOrderReceive, Name: "Receive Purchase Order"},

	{Code: PrivTicketView, Name: "View Ticket"},
	{Code: PrivTicketCreate, Name: "Create Ticket"},
	{Code: PrivTicketUpdate, Name: "Update Ticket"},
	{Code: PrivTicketDelete, Name: "Delete Ticket"},

	{Code: PrivSmsView, Name: "View SMS Campaign"},
	{Code: PrivSmsManage, Name: "Manage SMS Campaign"},
	{Code: PrivSmsSend, Name: "Send SMS Campaign"},

	{Code: PrivDashboardView, Name: "View Dashboard"},
}

// UserManagementPrivileges are withheld from the ADMIN role.
var UserManagementPrivileges = []string{
	PrivUserCreate, PrivUserUpdate, PrivUserDelete, PrivUserUpdatePrivilege,
}
