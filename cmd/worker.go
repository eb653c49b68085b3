package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"resumatch/src/core/search"
	"resumatch/src/infrastructure/integrations/jina"
	"resumatch/src/infrastructure/integrations/ollama"
	"resumatch/src/infrastructure/learning"
	"resumatch/src/storage/postgres/feedbackctrl"
	"resumatch/src/storage/postgres/knowledgectrl"
	"resumatch/src/storage/postgres/patternctrl"
	"resumatch/src/storage/postgres/querylogctrl"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume learning writes from the AMQP queue",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	logger := watermill.NewStdLogger(false, false)

	// Initialize PostgreSQL connection
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %v", err)
	}
	defer sqlDB.Close()

	// Initialize repositories
	knowledgeRepo, err := knowledgectrl.NewRepository(db)
	if err != nil {
		return err
	}
	patternRepo, err := patternctrl.NewRepository(db)
	if err != nil {
		return err
	}
	feedbackRepo, err := feedbackctrl.NewRepository(db)
	if err != nil {
		return err
	}
	queryLogRepo, err := querylogctrl.NewRepository(db)
	if err != nil {
		return err
	}
	// The knowledge write embeds the stored question, so the worker needs
	// the same embedding provider as the server.
	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 30 * time.Second,
	})
	var embedder search.EmbeddingProvider = ollama.NewProvider(oc,
		viper.GetString("ollama.model"),
		viper.GetString("ollama.embedding_model"))
	if viper.GetString("embedding.provider") == "jina" {
		embedder = jina.NewClient(
			viper.GetString("jina.url"),
			viper.GetString("jina.api_key"),
			viper.GetString("jina.model"),
			viper.GetInt("jina.dimensions"),
			&http.Client{Timeout: 30 * time.Second},
		)
	}

	// Initialize AMQP subscriber
	subscriberConfig := amqp.NewDurableQueueConfig(viper.GetString("amqp.url"))
	subscriberConfig.Consume.NoRequeueOnNack = true
	amqpSubscriber, err := amqp.NewSubscriber(subscriberConfig, logger)
	if err != nil {
		return err
	}
	defer amqpSubscriber.Close()

	// Initialize router
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return err
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
	)

	worker := learning.NewWorker(knowledgeRepo, patternRepo, feedbackRepo, queryLogRepo, embedder)
	worker.Register(router, amqpSubscriber)

	return router.Run(context.Background())
}
