package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/invoice-designer/internal/api"
	"github.com/hypernova-labs/invoice-designer/internal/config"
	"github.com/hypernova-labs/invoice-designer/internal/database"
	"github.com/hypernova-labs/invoice-designer/internal/email"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/hypernova-labs/invoice-designer/internal/services"
	"github.com/hypernova-labs/invoice-designer/internal/workflows"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Invoice Designer...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Abrir el almacenamiento del estado del diseñador
	storage, err := database.OpenStore(cfg, logger)
	if err != nil {
		logger.Fatalf("Error opening designer storage: %v", err)
	}
	defer storage.Close()

	// Inicializar cliente de Supabase para archivar exportaciones
	var uploader services.ObjectUploader
	if cfg.HasSupabase() {
		supabaseClient, err := database.NewSupabaseClient(&cfg.Supabase, logger)
		if err != nil {
			logger.Warnf("Error initializing Supabase client: %v", err)
		} else {
			// Verificar conexión a Supabase
			if err := supabaseClient.HealthCheck(context.Background()); err != nil {
				logger.Warnf("Supabase health check failed: %v", err)
			} else {
				logger.Info("Supabase storage connection healthy")
			}
			uploader = supabaseClient
		}
	} else {
		logger.Warn("Supabase storage credentials not provided, export archiving will not be available")
	}

	// Inicializar servicio de Resend
	var mailer services.ExportMailer
	if cfg.Email.ResendAPIKey != "" {
		mailer = email.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.From, logger)
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, email export will not be available")
	}

	// Notificaciones: siempre al log, y a Inngest si hay credenciales
	notifier := services.MultiNotifier{services.NewLogNotifier(logger)}
	if cfg.Inngest.EventKey != "" {
		inngestClient, err := workflows.NewInngestClient(cfg, logger)
		if err != nil {
			logger.Warnf("Error initializing Inngest client: %v", err)
		} else {
			notifier = append(notifier, inngestClient)
		}
	} else {
		logger.Warn("Inngest event key not provided, designer events will not be published")
	}

	// Inicializar servicios
	ctx := context.Background()
	registry := services.NewTemplateRegistry()

	store := services.NewCustomizationStore(storage, registry, notifier, cfg.Storage.KeyPrefix, logger)
	state := store.Initialize(ctx)

	presets := services.NewPresetStore(storage, store, notifier, cfg.Storage.KeyPrefix, logger)
	saved := presets.Initialize(ctx)

	logger.WithFields(logrus.Fields{
		"template_id": state.TemplateID,
		"presets":     len(saved),
	}).Info("Designer state loaded")

	htmlRenderer, err := services.NewHTMLRenderer()
	if err != nil {
		logger.Fatalf("Error initializing HTML renderer: %v", err)
	}

	viewport, err := services.NewPreviewViewport(
		store,
		services.NewTemplateRenderer(registry),
		services.NewInvoiceAdapter(cfg.Designer.Currency),
		htmlRenderer,
		services.NewDocumentGenerator(logger),
		models.ZoomLevel(cfg.Designer.DefaultZoom),
		logger,
	)
	if err != nil {
		logger.Fatalf("Error initializing preview viewport: %v", err)
	}
	defer viewport.Close()

	exportService := services.NewExportService(viewport, uploader, mailer, notifier, logger)

	// Inicializar API
	apiHandler := api.NewAPI(
		registry,
		store,
		presets,
		viewport,
		exportService,
		logger,
	)

	// Configurar router
	router := setupRouter(apiHandler, cfg)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			c.Header("Access-Control-Expose-Headers", "ETag")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "invoice-designer",
			"storage":   cfg.Storage.Type,
			"version":   "1.0.0",
		})
	})

	// API v1
	apiHandler.RegisterRoutes(router.Group("/v1"))

	return router
}
