package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/config"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/interviewapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup/interviewsetupapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording/recordingapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/resumeapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// resume uploads carry many files in one multipart form
const minBodyLimit = 64 * 1024 * 1024

func main() {
	// 1. Load Config and Initialize Logger
	cfg := config.MustLoad()
	logx.Configure(cfg.Env)
	logx.SetLevel(logx.ParseLevel(cfg.LogLevel))
	defer logx.Sync()
	logx.Info("Starting Hire AI API Server...")

	// 2. Initialize Dependency Container
	container := NewContainer(cfg)
	defer container.Close()

	// 3. Create Fiber App with Config
	app := fiber.New(fiber.Config{
		AppName:               "Hire AI Insights API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             bodyLimit(cfg.Recording.BlockSize),
	})

	// 4. Global Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key, X-Upload-Token, " + interviewapi.SignatureHeader,
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// 5. Health Check and Metrics
	app.Get("/api/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		database := container.DB.PingContext(ctx) == nil
		redis := container.Redis.Ping(ctx).Err() == nil
		status := "healthy"
		if !database || !redis {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":      status,
			"timestamp":   time.Now().UTC(),
			"active_jobs": container.ResumeService.ActiveBatches(),
			"database":    database,
			"redis":       redis,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if container.S3Client == nil {
		app.Static(filesRoute, cfg.Storage.LocalRoot)
	}

	// 6. Register Routes

	// Jobs: /api/jobs
	jobapi.RegisterRoutes(app, container.JobHandlers, container.AuthMiddleware)

	// Resumes: /api/jobs/:id/resumes, /api/jobs/:id/results
	resumeapi.RegisterRoutes(app, container.ResumeHandlers, container.AuthMiddleware)

	// Interview setups: /api/jobs/:id/interview-setup
	interviewsetupapi.RegisterRoutes(app, container.SetupHandlers, container.AuthMiddleware)

	// Interviews: admin and candidate routes, voice agent webhook
	interviewapi.RegisterRoutes(app, container.InterviewHandlers, container.AuthMiddleware)

	// Recordings: /api/recordings/uploads (upload token)
	recordingapi.RegisterRoutes(app, container.RecordingHandlers)

	// 7. Start Background Workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	container.ResumeWorker.Start(workerCtx)

	// 8. Start Server with Graceful Shutdown
	go func() {
		logx.Infof("Server listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c // Wait for signal
	logx.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	container.ResumeWorker.Wait()

	logx.Info("Server exited")
}

// bodyLimit leaves room for one recording block plus request overhead
func bodyLimit(blockSize int64) int {
	limit := int(blockSize) + 1024*1024
	return max(limit, minBodyLimit)
}

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	// If it's a Fiber error (e.g., 404 handler not found)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   fe.Message,
			"code":    fe.Code,
			"message": fe.Message,
		})
	}

	// If it's our custom errx.Error
	var e *errx.Error
	if errors.As(err, &e) {
		if e.HTTPStatus >= fiber.StatusInternalServerError {
			logx.Errorf("%s %s: %v", c.Method(), c.Path(), e)
		}
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	// Default unknown error
	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
