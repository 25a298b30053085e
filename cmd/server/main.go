package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/riceguard/backend/internal/analyzer"
	"github.com/riceguard/backend/internal/api"
	"github.com/riceguard/backend/internal/config"
	"github.com/riceguard/backend/internal/history"
	"github.com/riceguard/backend/internal/inference"
	"github.com/riceguard/backend/internal/profile"
	"github.com/riceguard/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration (auto-generated on first run)
	configPath := filepath.Join(exeDir, "RiceGuard.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Load the grading profile if one is present, otherwise use the default
	prof := profile.Default()
	if cfg.Inference.ProfilePath != "" {
		if _, err := os.Stat(cfg.Inference.ProfilePath); err == nil {
			loaded, err := profile.Parse(cfg.Inference.ProfilePath)
			if err != nil {
				fmt.Printf("Warning: failed to load grading profile: %v\n", err)
			} else {
				prof = loaded
				fmt.Printf("Grading profile loaded from %s\n", cfg.Inference.ProfilePath)
			}
		}
	}

	// Remote inference client
	engine := inference.NewRoboflowClient(inference.RoboflowConfig{
		APIKey:     cfg.APIKey(),
		Workspace:  cfg.Inference.Workspace,
		WorkflowID: cfg.Inference.ModelID,
		BaseURL:    cfg.Inference.ServerlessURL,
		Timeout:    time.Duration(cfg.Inference.TimeoutSeconds) * time.Second,
	}, prof)

	if err := engine.Ready(); err != nil {
		fmt.Printf("Warning: inference not configured: %v\n", err)
	}

	// Analysis pipeline and in-memory history
	pipeline := analyzer.New(engine, prof, cfg.Inference.MaxImageLongSide)
	historyMgr := history.NewManagerWithLimit(cfg.History.MaxRecords)

	// Start background history cleanup
	go func() {
		interval := time.Duration(cfg.History.CleanupIntervalMinutes) * time.Minute
		maxAge := time.Duration(cfg.History.MaxAgeHours) * time.Hour
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			historyMgr.CleanupOld(maxAge)
		}
	}()

	handlers := api.NewHandlers(&api.Dependencies{
		Analyzer:  pipeline,
		Inference: engine,
		History:   historyMgr,
		Version:   Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Analysis waits on the upstream model and manages its own timeout
			return c.Request().URL.Path == "/analyze"
		},
		ErrorMessage: "Request timeout",
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API routes
	api.RegisterRoutes(e, handlers)

	// Embedded frontend
	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	inferenceState := "not configured"
	if engine.Ready() == nil {
		inferenceState = "configured"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           RiceGuard Analysis Server                       ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Inference:  %-45s║\n", inferenceState)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	e.Logger.Fatal(e.StartServer(s))
}
