// Package server wires repositories, services and handlers into the fiber
// application.
package server

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"go-backoffice-api/internal/config"
	"go-backoffice-api/internal/handler"
	"go-backoffice-api/internal/middleware"
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/service"
	"go-backoffice-api/internal/ws"
	"go-backoffice-api/pkg/mailer"
	"go-backoffice-api/pkg/sms"
)

// Deps are the process-wide resources the API is built from. Mailer and SMS
// may be nil when their credentials are not configured.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Hub      *ws.Hub
	Mailer   mailer.Mailer
	SMS      sms.Sender
	Registry *prometheus.Registry
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

// Server is the assembled application.
type Server struct {
	App       *fiber.App
	Dashboard service.DashboardService
}

func New(d Deps) *Server {
	cfg := d.Config

	userRepo := repository.NewUserRepo(d.DB)
	roleRepo := repository.NewRoleRepo(d.DB)
	privilegeRepo := repository.NewPrivilegeRepo(d.DB)
	productRepo := repository.NewProductRepo(d.DB)
	supplierRepo := repository.NewSupplierRepo(d.DB)
	orderRepo := repository.NewOrderRepo(d.DB)
	poRepo := repository.NewPurchaseOrderRepo(d.DB)
	ticketRepo := repository.NewTicketRepo(d.DB)
	smsRepo := repository.NewSmsCampaignRepo(d.DB)
	dashRepo := repository.NewDashboardRepo(d.DB)

	authService := service.NewAuthService(userRepo, d.Hub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	productService := service.NewProductService(productRepo, supplierRepo, d.DB, d.Hub)
	supplierService := service.NewSupplierService(supplierRepo)
	notificationService := service.NewNotificationService(d.Mailer, orderRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, notificationService, d.DB, d.Hub)
	poService := service.NewPurchaseOrderService(poRepo, productRepo, supplierRepo, d.DB, d.Hub)
	ticketService := service.NewTicketService(ticketRepo, userRepo, d.DB, d.Hub)
	smsService := service.NewSmsCampaignService(smsRepo, d.SMS, cfg.SMSConcurrency, d.Hub)
	dashService := service.NewDashboardService(dashRepo, cfg.LowStockThreshold)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)
	productHandler := handler.NewProductHandler(productService, cfg.LowStockThreshold)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	orderHandler := handler.NewOrderHandler(orderService)
	poHandler := handler.NewPurchaseOrderHandler(poService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	smsHandler := handler.NewSmsCampaignHandler(smsService)
	dashHandler := handler.NewDashboardHandler(dashService, cfg.DashboardLookbackDays)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	// storefront email endpoints: public, own CORS policy
	notificationHandler.Register(app.Group("/api"))

	if d.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1", cors.New())

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	protected := api.Group("", middleware.RequireAuth(userRepo))
	requires := middleware.RequirePrivilege

	protected.Get("/navigation", handler.GetNavigation)

	protected.Get("/dashboard/metrics", requires(model.PrivDashboardView), dashHandler.GetMetrics)
	protected.Get("/dashboard/sales", requires(model.PrivDashboardView), dashHandler.GetSales)
	protected.Get("/dashboard/stats", requires(model.PrivDashboardView), dashHandler.GetDashboardStats)

	protected.Get("/products", requires(model.PrivProductView), productHandler.GetProducts)
	protected.Get("/products/export", requires(model.PrivProductView), productHandler.ExportProducts)
	protected.Get("/products/:id", requires(model.PrivProductView), productHandler.GetProduct)
	protected.Post("/products", requires(model.PrivProductCreate), productHandler.CreateProduct)
	protected.Put("/products/:id", requires(model.PrivProductUpdate), productHandler.UpdateProduct)
	protected.Delete("/products/:id", requires(model.PrivProductDelete), productHandler.DeleteProduct)

	protected.Get("/suppliers", requires(model.PrivSupplierView), supplierHandler.GetSuppliers)
	protected.Get("/suppliers/:id", requires(model.PrivSupplierView), supplierHandler.GetSupplier)
	protected.Post("/suppliers", requires(model.PrivSupplierCreate), supplierHandler.CreateSupplier)
	protected.Post("/suppliers/import", requires(model.PrivSupplierCreate), supplierHandler.ImportSuppliers)
	protected.Put("/suppliers/:id", requires(model.PrivSupplierUpdate), supplierHandler.UpdateSupplier)
	protected.Delete("/suppliers/:id", requires(model.PrivSupplierDelete), supplierHandler.DeleteSupplier)

	protected.Get("/orders", requires(model.PrivOrderView), orderHandler.GetOrders)
	protected.Get("/orders/:id", requires(model.PrivOrderView), orderHandler.GetOrder)
	protected.Post("/orders", requires(model.PrivOrderCreate), orderHandler.CreateOrder)
	protected.Put("/orders/:id", requires(model.PrivOrderUpdate), orderHandler.UpdateOrder)
	protected.Patch("/orders/:id/status", requires(model.PrivOrderUpdate), orderHandler.UpdateStatus)
	protected.Delete("/orders/:id", requires(model.PrivOrderDelete), orderHandler.DeleteOrder)

	protected.Get("/purchase-orders", requires(model.PrivPurchaseOrderView), poHandler.GetPurchaseOrders)
	protected.Get("/purchase-orders/:id", requires(model.PrivPurchaseOrderView), poHandler.GetPurchaseOrder)
	protected.Post("/purchase-orders", requires(model.PrivPurchaseOrderCreate), poHandler.CreatePurchaseOrder)
	protected.Put("/purchase-orders/:id", requires(model.PrivPurchaseOrderUpdate), poHandler.UpdatePurchaseOrder)
	protected.Post("/purchase-orders/:id/receive", requires(model.PrivPurchaseOrderReceive), poHandler.Receive)
	protected.Delete("/purchase-orders/:id", requires(model.PrivPurchaseOrderDelete), poHandler.DeletePurchaseOrder)

	protected.Get("/tickets", requires(model.PrivTicketView), ticketHandler.GetTickets)
	protected.Get("/tickets/:id", requires(model.PrivTicketView), ticketHandler.GetTicket)
	protected.Post("/tickets", requires(model.PrivTicketCreate), ticketHandler.CreateTicket)
	protected.Put("/tickets/:id", requires(model.PrivTicketUpdate), ticketHandler.UpdateTicket)
	protected.Post("/tickets/:id/comments", requires(model.PrivTicketUpdate), ticketHandler.AddComment)
	protected.Delete("/tickets/:id", requires(model.PrivTicketDelete), ticketHandler.DeleteTicket)

	protected.Get("/sms-campaigns", requires(model.PrivSmsView), smsHandler.GetCampaigns)
	protected.Get("/sms-campaigns/:id", requires(model.PrivSmsView), smsHandler.GetCampaign)
	protected.Post("/sms-campaigns", requires(model.PrivSmsManage), smsHandler.CreateCampaign)
	protected.Put("/sms-campaigns/:id", requires(model.PrivSmsManage), smsHandler.UpdateCampaign)
	protected.Delete("/sms-campaigns/:id", requires(model.PrivSmsManage), smsHandler.DeleteCampaign)
	protected.Post("/sms-campaigns/:id/send", requires(model.PrivSmsSend), smsHandler.SendCampaign)

	// ticket assignment needs the user list, so ticket editors may read it too
	protected.Get("/users", middleware.RequireAnyPrivilege(model.PrivUserView, model.PrivTicketUpdate), userHandler.GetUsers)
	protected.Get("/users/:id", requires(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", requires(model.PrivUserCreate), userHandler.CreateUser)
	protected.Put("/users/:id", requires(model.PrivUserUpdate), userHandler.UpdateUser)
	protected.Delete("/users/:id", requires(model.PrivUserDelete), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", requires(model.PrivUserUpdatePrivilege), userHandler.UpdateUserPrivileges)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			d.Hub.Register <- c
			defer func() { d.Hub.Unregister <- c }()
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}

	return &Server{App: app, Dashboard: dashService}
}
