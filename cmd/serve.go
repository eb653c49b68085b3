package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	httpHdlr "resumatch/handler/http"
	"resumatch/src/core/search"
	"resumatch/src/infrastructure/integrations/jina"
	"resumatch/src/infrastructure/integrations/ollama"
	"resumatch/src/infrastructure/learning"
	"resumatch/src/log"
	"resumatch/src/storage/postgres/documentctrl"
	"resumatch/src/storage/postgres/feedbackctrl"
	"resumatch/src/storage/postgres/knowledgectrl"
	"resumatch/src/storage/postgres/patternctrl"
	"resumatch/src/storage/postgres/querylogctrl"
	"resumatch/src/storage/weaviate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resume search server",
	Long:  `The serve command starts an HTTP server that provides the semantic search API`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL connection
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Error(err, "Failed to connect to database")
		return
	}

	// Initialize repositories
	knowledgeRepo, err := knowledgectrl.NewRepository(db)
	if err != nil {
		log.Error(err, "Failed to create knowledge repository")
		return
	}
	patternRepo, err := patternctrl.NewRepository(db)
	if err != nil {
		log.Error(err, "Failed to create pattern repository")
		return
	}
	feedbackRepo, err := feedbackctrl.NewRepository(db)
	if err != nil {
		log.Error(err, "Failed to create feedback repository")
		return
	}
	queryLogRepo, err := querylogctrl.NewRepository(db)
	if err != nil {
		log.Error(err, "Failed to create query log repository")
		return
	}
	documentRepo, err := documentctrl.NewRepository(db)
	if err != nil {
		log.Error(err, "Failed to create document repository")
		return
	}

	// Initialize Weaviate client and ensure the resume class exists
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	wsdk := weaviate.NewSDK(wc)
	className := viper.GetString("weaviate.class")
	if err := wsdk.EnsureSchema(ctx, className); err != nil {
		log.Error(err, "Failed to ensure weaviate schema", "class", className)
		return
	}
	index := weaviate.NewIndex(wsdk, className)

	// Initialize Ollama client
	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 30 * time.Second,
	})
	generator := ollama.NewProvider(oc,
		viper.GetString("ollama.model"),
		viper.GetString("ollama.embedding_model"))

	// Pick the embedding provider
	var embedder search.EmbeddingProvider = generator
	if viper.GetString("embedding.provider") == "jina" {
		embedder = jina.NewClient(
			viper.GetString("jina.url"),
			viper.GetString("jina.api_key"),
			viper.GetString("jina.model"),
			viper.GetInt("jina.dimensions"),
			&http.Client{Timeout: 30 * time.Second},
		)
	}

	// Initialize the learning queue. The channel transport consumes
	// in-process; the amqp transport leaves consumption to a worker.
	wmLogger := watermill.NewStdLogger(false, false)
	var publisher message.Publisher
	switch viper.GetString("learning.transport") {
	case "amqp":
		amqpPublisher, err := amqp.NewPublisher(
			amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
			wmLogger,
		)
		if err != nil {
			log.Error(err, "Failed to create amqp publisher")
			return
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	default:
		channel := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		defer channel.Close()
		publisher = channel

		router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
		if err != nil {
			log.Error(err, "Failed to create learning router")
			return
		}
		router.AddMiddleware(middleware.Recoverer)

		worker := learning.NewWorker(knowledgeRepo, patternRepo, feedbackRepo, queryLogRepo, embedder)
		worker.Register(router, channel)

		go func() {
			if err := router.Run(ctx); err != nil {
				log.Error(err, "Learning router stopped")
			}
		}()
	}
	queue := learning.NewQueue(publisher)

	// Assemble the search pipeline
	cfg := search.Config{
		CacheThreshold: viper.GetFloat64("search.cache_threshold"),
		RelevanceFloor: viper.GetFloat64("search.relevance_floor"),
		TopK:           viper.GetInt("search.top_k"),
		MaxResults:     viper.GetInt("search.max_results"),
	}
	service := search.NewService(
		search.NewAnalyzer(patternRepo, generator),
		search.NewCache(knowledgeRepo, embedder, cfg.CacheThreshold),
		search.NewRetriever(index, embedder, cfg.TopK, cfg.RelevanceFloor),
		search.NewReranker(feedbackRepo),
		search.NewSink(queue),
		generator,
		documentRepo,
		cfg,
	)

	// Setup gin router
	r := gin.Default()
	handler := httpHdlr.NewHandler(service)
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	// Close database connection
	sqlDB, err := db.DB()
	if err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
	} else if err := sqlDB.Close(); err != nil {
		log.Error(err, "Error closing database connection")
	}

	log.Info("Server exited")
}
