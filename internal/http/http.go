package http

import (
	"github.com/equipstat/equipstat/internal/appcontext"
	"github.com/equipstat/equipstat/internal/http/middleware"
	"github.com/gin-gonic/gin"
)

type APIService struct {
	engine  *gin.Engine
	context *appcontext.Context
}

func NewHTTPService(ctx *appcontext.Context) *APIService {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORSMiddleware())

	service := &APIService{
		engine:  engine,
		context: ctx,
	}
	service.setupRoutes()
	return service
}

func (h *APIService) Engine() *gin.Engine {
	return h.engine
}

func (h *APIService) setupRoutes() {
	v1 := h.engine.Group("/api/v1")
	h.setupAuthRoutes(v1)
	h.setupEquipmentRoutes(v1)
}

func (h *APIService) setupAuthRoutes(group *gin.RouterGroup) {
	auth := group.Group("/auth")

	auth.POST("/register", Register(h.context))
	auth.POST("/login", Login(h.context))
}

func (h *APIService) setupEquipmentRoutes(group *gin.RouterGroup) {
	api := group.Group("")
	api.Use(middleware.JWTAuthMiddleware())

	api.POST("/upload", UploadCSV(h.context))
	api.GET("/history", GetHistory(h.context))
	api.GET("/summary/:datasetID", GetSummary(h.context))
	api.GET("/data/:datasetID", GetEquipmentData(h.context))
	api.GET("/pdf/:datasetID", GeneratePDF(h.context))
}
