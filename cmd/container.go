package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/embeddings"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	appconfig "github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/config"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/migrations"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/textextract"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/voiceagent"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx/fsxlocal"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx/fsxs3"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/interviewapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/interviewinfra"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview/interviewsrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup/interviewsetupapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup/interviewsetupinfra"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup/interviewsetupsrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobinfra"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job/jobsrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording/recordingapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording/recordinginfra"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording/recordingsrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/resumeapi"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/resumeinfra"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/resumesrv"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/worker"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer = "hire-ai"
	filesRoute  = "/files"
)

// Container holds all application dependencies
type Container struct {
	Config *appconfig.Config

	// Infrastructure
	DB          *sqlx.DB
	Redis       *redis.Client
	FileSystem  fsx.FileSystem
	Multipart   fsx.MultipartStore
	S3Client    *s3.Client
	ResumeQueue *resumeinfra.RedisQueue

	// AI
	Completer  llm.Completer
	Vision     llm.VisionCompleter
	Embedder   embeddings.Embedder
	VoiceAgent *voiceagent.Client

	// Services
	JobService       *jobsrv.JobService
	ResumeService    *resumesrv.Service
	SetupService     *interviewsetupsrv.SetupService
	InterviewService *interviewsrv.Service
	RecordingService *recordingsrv.Service
	ResumeWorker     *worker.ResumeWorker

	// API Handlers
	JobHandlers       *jobapi.Handlers
	ResumeHandlers    *resumeapi.Handlers
	SetupHandlers     *interviewsetupapi.Handlers
	InterviewHandlers *interviewapi.Handlers
	RecordingHandlers *recordingapi.Handlers

	// Middleware
	AuthMiddleware *auth.UnifiedAuthMiddleware
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *appconfig.Config) *Container {
	c := &Container{Config: cfg}
	c.initInfrastructure()
	c.initAI()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Database Connection
	db, err := sqlx.Connect("postgres", c.Config.DB.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.DB.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.DB.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.DB.ConnLifetime)
	c.DB = db

	if err := migrations.Migrate(ctx, db); err != nil {
		logx.Fatalf("Failed to migrate database: %v", err)
	}
	if err := migrations.VerifySchema(ctx, db); err != nil {
		logx.Fatalf("Database schema check failed: %v", err)
	}

	// 2. Redis Connection
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(ctx).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}
	c.ResumeQueue = resumeinfra.NewRedisQueue(c.Redis, c.Config.Process.QueueName)

	// 3. Blob storage: S3 when a bucket is configured, local disk otherwise
	if c.Config.Storage.Bucket != "" {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(c.Config.Storage.Region))
		if err != nil {
			logx.Fatalf("unable to load SDK config, %v", err)
		}
		c.S3Client = s3.NewFromConfig(awsCfg)
		store := fsxs3.NewS3FileSystem(c.S3Client, c.Config.Storage.Bucket, c.Config.Storage.Prefix)
		c.FileSystem, c.Multipart = store, store
		logx.Infof("Using S3 bucket %s for uploads", c.Config.Storage.Bucket)
		return
	}

	store, err := fsxlocal.NewLocalFileSystem(c.Config.Storage.LocalRoot, c.Config.PublicURL+filesRoute)
	if err != nil {
		logx.Fatalf("Failed to prepare local storage: %v", err)
	}
	c.FileSystem, c.Multipart = store, store
	logx.Warnf("AWS_BUCKET not set, storing uploads under %s", c.Config.Storage.LocalRoot)
}

func (c *Container) initAI() {
	ai := c.Config.OpenAI
	if c.Config.LLMConfigured() {
		client := llm.NewClient(llm.Options{
			APIKey:           ai.APIKey,
			Endpoint:         ai.Endpoint,
			APIVersion:       ai.APIVersion,
			Deployment:       ai.Deployment,
			VisionDeployment: ai.VisionDeployment,
			MaxTokens:        ai.MaxTokens,
			MaxRetries:       ai.MaxRetries,
			MaxConcurrent:    ai.MaxConcurrentRequests,
		})
		c.Completer, c.Vision = client, client
		c.Embedder = embeddings.NewEmbeddingsGenerator(ai.APIKey, ai.Endpoint, ai.APIVersion, ai.EmbeddingDeployment)
	} else {
		logx.Warn("Azure OpenAI is not configured, analyses will use fallback results")
		c.Completer, c.Vision = llm.Unconfigured{}, llm.Unconfigured{}
	}

	c.VoiceAgent = voiceagent.NewClient(c.Config.Voice.BaseURL, c.Config.Voice.APIKey, nil)
	if !c.VoiceAgent.Configured() {
		logx.Warn("ELEVENLABS_API_KEY is not set, transcripts must be submitted directly")
	}
}

func (c *Container) initServices() {
	// --- Repositories ---
	jobRepo := jobinfra.NewPostgresJobRepository(c.DB)
	resumeRepo := resumeinfra.NewPostgresResultRepository(c.DB)
	setupRepo := interviewsetupinfra.NewPostgresSetupRepository(c.DB)
	sessionRepo := interviewinfra.NewPostgresSessionRepository(c.DB)
	resultRepo := interviewinfra.NewPostgresResultRepository(c.DB)
	uploadRepo := recordinginfra.NewPostgresUploadRepository(c.DB)

	// --- Auth ---
	var tokens auth.TokenService
	secret := c.Config.Auth.JWTSecret
	if secret != "" {
		tokens = auth.NewJWTService(secret, tokenIssuer)
	} else {
		// upload tokens still need signing; they stop validating on restart
		secret = kernel.NewID() + kernel.NewID()
		logx.Warn("JWT_SECRET is not set, upload tokens use an ephemeral key")
	}
	apiKeys := auth.NewAPIKeyVerifier(c.Config.Auth.AdminKeyHash, []string{auth.ScopeAll})
	c.AuthMiddleware = auth.NewUnifiedAuthMiddleware(tokens, apiKeys)
	uploadTokens := recordingsrv.NewUploadTokenService(auth.NewJWTService(secret, tokenIssuer))

	// --- Domain Services ---
	c.JobService = jobsrv.NewJobService(jobRepo, jobsrv.NewLLMAnalyzer(c.Completer), c.Embedder)

	c.ResumeService = resumesrv.NewService(
		resumeRepo,
		jobRepo,
		c.ResumeQueue,
		c.FileSystem,
		textextract.NewExtractor(c.Vision),
		resumesrv.NewLLMScreener(c.Completer),
		c.Embedder,
		resumesrv.Config{
			BatchSize:   c.Config.Process.BatchSize,
			MaxAttempts: c.Config.Process.MaxAttempts,
			Concurrency: c.Config.OpenAI.MaxConcurrentRequests,
		},
	)
	c.ResumeWorker = worker.NewResumeWorker(c.ResumeService, c.ResumeQueue, c.Config.Process.Workers)

	c.SetupService = interviewsetupsrv.NewSetupService(setupRepo, jobRepo)

	c.InterviewService = interviewsrv.NewService(
		sessionRepo,
		resultRepo,
		resumeRepo,
		jobRepo,
		c.SetupService,
		interviewsrv.NewLLMQuestionGenerator(c.Completer, interviewsrv.DefaultQuestionBank()),
		interviewsrv.NewLLMTranscriptAnalyzer(c.Completer),
		c.VoiceAgent,
		interviewsrv.Config{
			SessionTTL:      c.Config.Interview.SessionTTL,
			GracePeriod:     c.Config.Interview.GracePeriod,
			DefaultDuration: c.Config.Interview.DefaultDuration,
			WebhookSecret:   c.Config.Voice.WebhookSecret,
		},
	)

	c.RecordingService = recordingsrv.NewService(
		uploadRepo,
		sessionRepo,
		c.Multipart,
		recordinginfra.NewRedisBlockLock(c.Redis, ""),
		uploadTokens,
		c.InterviewService,
		recordingsrv.Config{
			BlockSize: c.Config.Recording.BlockSize,
			MaxSize:   c.Config.Recording.MaxSize,
			TokenTTL:  c.Config.Auth.UploadTokenTTL,
		},
	)

	// --- Handlers ---
	c.JobHandlers = jobapi.NewHandlers(c.JobService)
	c.ResumeHandlers = resumeapi.NewHandlers(c.ResumeService)
	c.SetupHandlers = interviewsetupapi.NewHandlers(c.SetupService)
	c.InterviewHandlers = interviewapi.NewHandlers(c.InterviewService)
	c.RecordingHandlers = recordingapi.NewHandlers(c.RecordingService)
}

// Close releases the services and connections in dependency order
func (c *Container) Close() {
	c.InterviewService.Shutdown()
	c.JobService.Wait()
	if err := c.Redis.Close(); err != nil {
		logx.Warnf("Failed to close Redis: %v", err)
	}
	if err := c.DB.Close(); err != nil {
		logx.Warnf("Failed to close database: %v", err)
	}
}
