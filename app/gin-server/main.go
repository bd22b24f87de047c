package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yoockh/teachback/config"
	"github.com/yoockh/teachback/internal/api/handlers"
	"github.com/yoockh/teachback/internal/api/middleware"
	"github.com/yoockh/teachback/internal/api/routes"
	"github.com/yoockh/teachback/internal/cache"
	"github.com/yoockh/teachback/internal/logger"
	"github.com/yoockh/teachback/internal/orchestrator"
	"github.com/yoockh/teachback/internal/providers/llm"
	"github.com/yoockh/teachback/internal/providers/stt"
	"github.com/yoockh/teachback/internal/providers/tts"
	"github.com/yoockh/teachback/internal/ratelimit"
	mongorepo "github.com/yoockh/teachback/internal/repositories/mongo"
	pgrepo "github.com/yoockh/teachback/internal/repositories/postgres"
	"github.com/yoockh/teachback/internal/services"
	"github.com/yoockh/teachback/internal/storage"
	"github.com/yoockh/teachback/internal/voice"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("mongodb init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("mongodb index bootstrap failed")
	}
	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("postgresql init failed")
	}
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("redis init failed")
	}

	plans, err := config.LoadPlans()
	if err != nil {
		log.WithError(err).Fatal("plan config invalid")
	}

	ctx := context.Background()
	projectID := os.Getenv("GCP_PROJECT")
	location := os.Getenv("GCP_LOCATION")

	primary, err := llm.NewVertexGemini(ctx, projectID, location, os.Getenv("LLM_PRIMARY_MODEL"))
	if err != nil {
		log.WithError(err).Fatal("primary llm init failed")
	}
	backends := []llm.Provider{primary}
	if fallbackModel := os.Getenv("LLM_FALLBACK_MODEL"); fallbackModel != "" {
		fallback, ferr := llm.NewVertexGemini(ctx, projectID, location, fallbackModel)
		if ferr != nil {
			log.WithError(ferr).Warn("fallback llm init failed, running without failover")
		} else {
			backends = append(backends, fallback)
		}
	}
	chain := llm.NewChain(log, llmTimeout(), backends...)

	// speech engines are optional: sessions degrade to text when either is
	// missing or down
	var sttProvider stt.Provider
	if p, serr := stt.NewGoogleSpeech(ctx); serr != nil {
		log.WithError(serr).Warn("stt init failed, voice input disabled")
	} else {
		sttProvider = p
	}
	var ttsProvider tts.Provider
	if p, terr := tts.NewGoogleTTS(ctx); terr != nil {
		log.WithError(terr).Warn("tts init failed, voice output disabled")
	} else {
		ttsProvider = p
	}

	var embedder services.Embedder
	if e, eerr := llm.NewVertexEmbedder(ctx, projectID, location, os.Getenv("EMBEDDING_MODEL")); eerr != nil {
		log.WithError(eerr).Warn("embedder init failed, transcript embeddings disabled")
	} else {
		embedder = e
	}

	var uploader storage.Uploader
	if bucket := os.Getenv("AUDIO_BUCKET"); bucket != "" {
		if u, uerr := storage.NewGCSUploader(ctx, bucket); uerr != nil {
			log.WithError(uerr).Warn("gcs init failed, audio archival disabled")
		} else {
			uploader = u
		}
	}

	db := config.MongoDatabase()
	mgr := services.NewSessionManager(services.Deps{
		Limiter:  ratelimit.New(config.RedisClient, plans),
		Voice:    voice.New(sttProvider, ttsProvider, log),
		Roles:    orchestrator.New(chain, log),
		Sessions: mongorepo.NewSessionRepo(db),
		Exams:    mongorepo.NewExamRepo(db),
		Errors:   mongorepo.NewErrorRepo(db),
		Turns:    pgrepo.NewTranscriptRepo(config.PostgresDB),
		Reports:  pgrepo.NewSummaryRepo(config.PostgresDB),
		Cache:    cache.NewRedisCache(config.RedisClient),
		Uploader: uploader,
		Events:   services.NewRedisPublisher(config.RedisClient),
		Embed:    embedder,
		Logger:   log,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Session: handlers.NewSessionHandler(mgr),
		Quota:   handlers.NewQuotaHandler(mgr),
		WS:      handlers.NewWSHandler(mgr, config.RedisClient),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func llmTimeout() time.Duration {
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 30 * time.Second
}
