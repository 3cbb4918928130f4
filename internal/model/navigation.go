package model

// MenuArea is where a navigation entry is shown.
type MenuArea string

const (
	AreaSidebar MenuArea = "sidebar"
	AreaMobile  MenuArea = "mobile"
)

// MenuEntry is one navigation link rendered by the front end.
type MenuEntry struct {
	Label     string   `json:"label"`
	Icon      string   `json:"icon"`
	Path      string   `json:"path"`
	Area      MenuArea `json:"area"`
	Privilege string   `json:"privilege,omitempty"`
}

// Navigation is the static route map for sidebar and mobile menus.
var Navigation = []MenuEntry{
	{Label: "Dashboard", Icon: "LayoutDashboard", Path: "/", Area: AreaSidebar, Privilege: PrivDashboardView},
	{Label: "Orders", Icon: "ShoppingCart", Path: "/orders", Area: AreaSidebar, Privilege: PrivOrderView},
	{Label: "Products", Icon: "Package", Path: "/products", Area: AreaSidebar, Privilege: PrivProductView},
	{Label: "Suppliers", Icon: "Truck", Path: "/suppliers", Area: AreaSidebar, Privilege: PrivSupplierView},
	{Label: "Purchase Orders", Icon: "ClipboardList", Path: "/purchase-orders", Area: AreaSidebar, Privilege: PrivPurchaseOrderView},
	{Label: "Tickets", Icon: "LifeBuoy", Path: "/tickets", Area: AreaSidebar, Privilege: PrivTicketView},
	{Label: "SMS Campaigns", Icon: "MessageSquare", Path: "/sms-campaigns", Area: AreaSidebar, Privilege: PrivSmsView},
	{Label: "Users", Icon: "Users", Path: "/users", Area: AreaSidebar, Privilege: PrivUserView},

	{Label: "Home", Icon: "Home", Path: "/", Area: AreaMobile, Privilege: PrivDashboardView},
	{Label: "Orders", Icon: "ShoppingCart", Path: "/orders", Area: AreaMobile, Privilege: PrivOrderView},
	{Label: "Products", Icon: "Package", Path: "/products", Area: AreaMobile, Privilege: PrivProductView},
	{Label: "Tickets", Icon: "LifeBuoy", Path: "/tickets", Area: AreaMobile, Privilege: PrivTicketView},
}

// MenuFor returns the entries of area ("" for all) the holder of privileges
// may open. A nil privileges slice skips the privilege filter.
func MenuFor(area MenuArea, privileges []string) []MenuEntry {
	allowed := make(map[string]bool, len(privileges))
	for _, p := range privileges {
		allowed[p] = true
	}
	out := []MenuEntry{}
	for _, e := range Navigation {
		if area != "" && e.Area != area {
			continue
		}
		if privileges != nil && e.Privilege != "" && !allowed[e.Privilege] {
			continue
		}
		out = append(out, e)
	}
	return out
}
