package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"esim-service/internal/catalog"
	"esim-service/internal/controllers/http"
	"esim-service/internal/fallback"
	"esim-service/internal/infra/mailer"
	mmysql "esim-service/internal/infra/mysql"
	"esim-service/internal/infra/rabbitmq"
	"esim-service/internal/infra/reseller"
	mysqlrepo "esim-service/internal/repository/mysql"
	"esim-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	db, err := mmysql.New(mmysql.Config{
		User:     os.Getenv("MYSQL_USER"),
		Password: os.Getenv("MYSQL_PASSWORD"),
		Host:     os.Getenv("MYSQL_HOST"),
		Port:     os.Getenv("MYSQL_PORT"),
		Database: os.Getenv("MYSQL_DATABASE"),
	})
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	packageRepo := mysqlrepo.NewPackageRepository(db)

	resellerClient := reseller.New(reseller.Config{
		BaseURL: os.Getenv("RESELLER_API_URL"),
		APIKey:  os.Getenv("RESELLER_API_KEY"),
		Timeout: 30 * time.Second,
	})

	snapshot := catalog.NewSnapshot(resellerClient)
	resolver := fallback.NewResolver()

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "order.exchange")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	sink := mailer.New(mailer.Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     smtpPort,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     os.Getenv("SMTP_FROM"),
	})

	fulfillment := services.NewFulfillmentService(orderRepo, packageRepo, resellerClient, snapshot, resolver, publisher, sink)
	orderService := services.NewOrderService(orderRepo, packageRepo)
	syncService := services.NewCatalogSyncService(packageRepo, snapshot, resolver)

	var redisClient *redis.Client
	if host := os.Getenv("REDIS_HOST"); host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         host + ":6379",
			DB:           0,
			PoolSize:     50,
			MinIdleConns: 10,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		snapshot.SetRedisClient(redisClient)
	}

	handler := http.NewHandler(fulfillment, orderService, syncService, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting esim service on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
