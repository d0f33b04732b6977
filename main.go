package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/controllers"
	"github.com/t-finder/t-finder-api/middleware"
	"github.com/t-finder/t-finder-api/models"
	"github.com/t-finder/t-finder-api/services"
	"github.com/t-finder/t-finder-api/utils"
)

func main() {
	// Basic logging
	log.Println("Starting T-Finder API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Technician{},
		&models.Booking{},
		&models.Review{},
		&models.Appointment{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Profile photo storage: S3 when configured, local disk otherwise
	if cfg.HasS3() {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Println("Photo storage: S3")
	} else {
		services.InitLocalImageService(utils.UploadDir)
		log.Println("Photo storage: local disk")
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with middleware and all API routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.CORSOrigin}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, middleware.TokenHeader)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheck)

	api := router.Group("/api")
	{
		// Database status endpoint
		api.GET("/database/status", databaseStatus)

		// Auth and profile
		api.POST("/users/register", controllers.Register)
		api.POST("/technicians/register", controllers.RegisterTechnician)
		api.POST("/users/login", controllers.Login)
		api.GET("/users/profile", middleware.RequireAuth(), controllers.GetProfile)
		api.PUT("/users/profile", middleware.RequireAuth(), controllers.UpdateProfile)

		// Catalog
		api.GET("/categories", controllers.GetCategories)
		api.GET("/cities", controllers.GetCities)
		api.GET("/technicians", controllers.GetTechnicians)
		api.GET("/technicians/:id", controllers.GetTechnician)

		// Reviews
		api.GET("/technicians/:id/reviews", controllers.GetReviews)
		api.POST("/technicians/:id/reviews", middleware.RequireAuth(), controllers.AddReview)

		// Slot availability is public so customers can browse before booking
		api.GET("/bookings/available-slots/:technicianId", controllers.GetAvailableSlots)

		// Bookings
		bookings := api.Group("/bookings", middleware.RequireAuth())
		{
			bookings.POST("", controllers.CreateBooking)
			bookings.GET("/my-bookings", controllers.GetMyBookings)
			bookings.GET("/technician-bookings", controllers.GetTechnicianBookings)
			bookings.GET("/:id", controllers.GetBooking)
			bookings.PUT("/:id/status", controllers.UpdateBookingStatus)
		}

		// Appointments (legacy flow)
		appointments := api.Group("/appointments", middleware.RequireAuth())
		{
			appointments.POST("", controllers.CreateAppointment)
			appointments.GET("", controllers.GetMyAppointments)
			appointments.GET("/my-appointments", controllers.GetMyAppointments)
			appointments.PUT("/:id", controllers.UpdateAppointment)
		}

		// Profile photos
		api.POST("/technicians/profile/photo", middleware.RequireAuth(), controllers.UploadProfilePhoto)
		api.GET("/uploads/:filename", controllers.GetUploadedImage)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "T-Finder API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
