package routes

import (
	"food-delivery-engine/handlers"
	"food-delivery-engine/middleware"
	"food-delivery-engine/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Restaurants & menus (no auth needed)
		public.GET("/restaurants", handlers.ListRestaurants)
		public.GET("/restaurants/:id", handlers.GetRestaurant)
		public.GET("/restaurants/:id/menu", handlers.GetMenu)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetStateMachineInfo)

		// Live events (token via query parameter)
		public.GET("/ws", handlers.ServeWS)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)

		// Wallet (any role)
		auth.GET("/wallet", handlers.GetMyWallet)
		auth.POST("/wallet/deposit", handlers.Deposit)
		auth.POST("/wallet/topup", handlers.RequestTopup)
		auth.POST("/wallet/withdraw", handlers.RequestWithdrawal)

		// Order chat (any party to the order)
		auth.GET("/orders/:id/chat", handlers.GetChatMessages)
		auth.POST("/orders/:id/chat", handlers.PostChatMessage)
		auth.GET("/orders/:id/trail", handlers.GetOrderTrail)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", handlers.PlaceOrder)
		customer.GET("/orders", handlers.GetMyOrders)
		customer.GET("/orders/:id", handlers.GetOrderDetail)
	}

	// ── Merchant routes ────────────────────────────────────────────
	merchant := r.Group("/api/merchant")
	merchant.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleMerchant))
	{
		// Restaurant management
		merchant.POST("/restaurant", handlers.CreateRestaurant)
		merchant.GET("/restaurant", handlers.GetMyRestaurant)
		merchant.PUT("/restaurant", handlers.UpdateRestaurant)

		// Menu management
		merchant.POST("/menu", handlers.AddMenuItem)
		merchant.PUT("/menu/:itemId", handlers.UpdateMenuItem)
		merchant.DELETE("/menu/:itemId", handlers.DeleteMenuItem)

		// Order management
		merchant.GET("/orders", handlers.GetRestaurantOrders)
		merchant.PUT("/orders/:id/status", handlers.UpdateOrderStatus)
		merchant.PUT("/orders/:id/items", handlers.EditOrderItems)
	}

	// ── Rider routes ───────────────────────────────────────────────
	rider := r.Group("/api/rider")
	rider.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleRider))
	{
		rider.GET("/orders/available", handlers.GetAvailableOrders)
		rider.GET("/orders/my-deliveries", handlers.GetMyDeliveries)
		rider.PUT("/orders/:id/claim", handlers.ClaimOrder)
		rider.PUT("/orders/:id/pickup", handlers.PickupOrder)
		rider.PUT("/orders/:id/deliver", handlers.DeliverOrder)
		rider.PUT("/online", handlers.SetOnline)
		rider.POST("/location", handlers.PostLocation)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", handlers.AdminGetAllOrders)
		admin.PUT("/orders/:id/cancel", handlers.AdminCancelOrder)
		admin.GET("/users", handlers.AdminGetAllUsers)
		admin.GET("/riders", handlers.AdminListRiders)
		admin.PUT("/riders/:id/approval", handlers.AdminSetRiderApproval)
		admin.PUT("/transactions/:id/resolve", handlers.AdminResolveTransaction)
		admin.POST("/wallets/:id/recompute", handlers.AdminRecomputeWallet)
	}
}
