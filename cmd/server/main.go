package main

import (
	"strconv"
	"strings"

	"sari_pos_backend/internal/database"
	"sari_pos_backend/internal/middleware"
	"sari_pos_backend/internal/router"
	"sari_pos_backend/internal/sessions"
	"sari_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	utils.InitLogger()

	jwtSecret := utils.Getenv("JWT_SECRET", "")
	if utils.IsEmpty(jwtSecret) {
		log.Fatal().Msg("JWT_SECRET must be set")
	}
	utils.InitJWT(jwtSecret)

	dbConfig := database.Config{
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "postgres"),
		Password:   utils.Getenv("DB_PASSWORD", "postgres"),
		DBName:     utils.Getenv("DB_NAME", "sari_pos"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
	}
	if err := database.InitDB(dbConfig); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.Close()

	redisDB, err := strconv.Atoi(utils.Getenv("REDIS_DB", "0"))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid REDIS_DB value")
	}
	tokenStore, err := sessions.NewRedisTokenStore(
		utils.Getenv("REDIS_ADDR", "localhost:6379"),
		utils.Getenv("REDIS_PASSWORD", ""),
		redisDB,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis token store")
	}

	if utils.Getenv("GIN_MODE", "") == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	if origins := utils.Getenv("CORS_ALLOWED_ORIGINS", "*"); origins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	r.Use(cors.New(corsConfig))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	router.Setup(r, database.GetDB(), tokenStore, router.Config{
		DiscountBeforeTax:   utils.GetenvBool("DISCOUNT_BEFORE_TAX", false),
		RegistrationEnabled: utils.GetenvBool("REGISTRATION_ENABLED", true),
	})

	port := utils.Getenv("PORT", "8080")
	log.Info().Str("port", port).Msg("Starting server")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
