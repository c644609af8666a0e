package router

import (
	"github.com/cuongbtq/jobcard-service/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	jobHandler := handler.NewJobHandler(deps)
	inventoryHandler := handler.NewInventoryHandler(deps)
	directoryHandler := handler.NewDirectoryHandler(deps)

	r.GET("/health", directoryHandler.Health)

	// Client-facing viewer reached from the QR payload
	r.GET("/public/jobs/:job_id", directoryHandler.PublicJob)

	v1 := r.Group("/api/v1")
	v1.Use(ActorMiddleware())
	{
		v1.GET("/bootstrap", directoryHandler.Bootstrap)
		v1.GET("/clients", directoryHandler.ListClients)
		v1.GET("/services", directoryHandler.ListServices)
		v1.POST("/services", directoryHandler.SaveService)
		v1.GET("/notifications", directoryHandler.ListNotifications)

		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.CreateJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/:job_id", jobHandler.GetJob)
			jobs.PATCH("/:job_id", jobHandler.UpdateJob)
			jobs.DELETE("/:job_id", jobHandler.DeleteJob)

			// Lifecycle
			jobs.POST("/:job_id/status", jobHandler.AdvanceStatus)
			jobs.POST("/:job_id/cancel", jobHandler.CancelJob)
			jobs.POST("/:job_id/schedule", jobHandler.ScheduleJob)
			jobs.POST("/:job_id/close", jobHandler.CloseJob)
			jobs.POST("/:job_id/rebook", jobHandler.RebookJob)
			jobs.GET("/:job_id/features", jobHandler.Features)
			jobs.GET("/:job_id/qr", jobHandler.QRPayload)

			// Checkpoints
			jobs.POST("/:job_id/checkpoints", jobHandler.AddCheckpoint)
			jobs.PATCH("/:job_id/checkpoints/:checkpoint_id", jobHandler.UpdateCheckpoint)
			jobs.DELETE("/:job_id/checkpoints/:checkpoint_id", jobHandler.DeleteCheckpoint)
			jobs.POST("/:job_id/checkpoints/:checkpoint_id/tasks", jobHandler.AddTask)
			jobs.PATCH("/:job_id/checkpoints/:checkpoint_id/tasks/:task_id", jobHandler.SetTask)
			jobs.PUT("/:job_id/checkpoints/:checkpoint_id/monitor", jobHandler.SetMonitorData)
			jobs.POST("/:job_id/checkpoints/:checkpoint_id/photos", jobHandler.AddPhoto)
			jobs.POST("/:job_id/templates/:service_id", jobHandler.LoadTemplate)
			jobs.POST("/:job_id/scan", jobHandler.Scan)

			// Quote and invoice
			jobs.POST("/:job_id/quote/items", jobHandler.AddLineItem)
			jobs.POST("/:job_id/quote/items/inventory", jobHandler.AddInventoryLineItem)
			jobs.DELETE("/:job_id/quote/items/:item_id", jobHandler.RemoveLineItem)
			jobs.PATCH("/:job_id/quote", jobHandler.UpdateQuote)
			jobs.GET("/:job_id/quote/deposit", jobHandler.Deposit)
			jobs.PATCH("/:job_id/invoice", jobHandler.UpdateInvoice)
			jobs.POST("/:job_id/deposit-paid", jobHandler.SetDepositPaid)

			// Execution and closure
			jobs.POST("/:job_id/usage", jobHandler.RecordUsage)
			jobs.POST("/:job_id/payment", jobHandler.RecordPayment)
			jobs.POST("/:job_id/certificates", jobHandler.AttachCertificate)

			// Documents and messages
			jobs.GET("/:job_id/documents/:kind", jobHandler.RenderDocument)
			jobs.POST("/:job_id/messages", jobHandler.PrepareMessage)
		}

		stock := v1.Group("/inventory")
		{
			stock.GET("", inventoryHandler.ListItems)
			stock.POST("", inventoryHandler.CreateItem)
			stock.GET("/low-stock", inventoryHandler.LowStock)
			stock.GET("/export.xlsx", inventoryHandler.Export)
			stock.GET("/:item_id", inventoryHandler.GetItem)
			stock.PUT("/:item_id", inventoryHandler.UpdateItem)
			stock.DELETE("/:item_id", inventoryHandler.DeleteItem)
		}
	}

	return r
}
