package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/krishnasingh5/redis-learning/docs"
	"github.com/krishnasingh5/redis-learning/internal/cache"
	"github.com/krishnasingh5/redis-learning/internal/handler"
	"github.com/krishnasingh5/redis-learning/internal/httpx"
)

func newEngine(logger *zap.Logger, store cache.Store, photos *handler.PhotoHandler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpx.RequestID())
	engine.Use(httpx.AccessLog(logger))
	engine.Use(httpx.CORS())

	healthHandler := &handler.HealthHandler{Store: store}
	healthHandler.Register(engine)
	photos.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return engine
}
