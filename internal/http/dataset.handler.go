package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/equipstat/equipstat/internal/appcontext"
	"github.com/equipstat/equipstat/internal/entity"
	"github.com/equipstat/equipstat/internal/ingest"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func GetHistory(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var datasets []entity.Dataset
		if err := ctx.DB.Order("uploaded_at DESC, id DESC").Limit(ingest.MaxDatasets).Find(&datasets).Error; err != nil {
			ctx.Logger.Error("Failed to fetch datasets", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch datasets"})
			return
		}

		history := make([]gin.H, 0, len(datasets))
		for _, dataset := range datasets {
			var count int64
			if err := ctx.DB.Model(&entity.Equipment{}).Where("dataset_id = ?", dataset.ID).Count(&count).Error; err != nil {
				ctx.Logger.Error("Failed to count equipment", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count equipment"})
				return
			}
			history = append(history, gin.H{
				"id":              dataset.ID,
				"name":            dataset.Name,
				"uploaded_at":     dataset.UploadedAt,
				"equipment_count": count,
			})
		}

		c.JSON(http.StatusOK, gin.H{"history": history})
	}
}

func GetEquipmentData(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetID, ok := parseDatasetID(c)
		if !ok {
			return
		}

		var dataset entity.Dataset
		if err := ctx.DB.First(&dataset, datasetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
				return
			}
			ctx.Logger.Error("Failed to fetch dataset", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dataset"})
			return
		}

		var rows []entity.Equipment
		if err := ctx.DB.Where("dataset_id = ?", dataset.ID).Order("id").Find(&rows).Error; err != nil {
			ctx.Logger.Error("Failed to fetch equipment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch equipment"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

// parseDatasetID reads the :datasetID path parameter. On failure it writes
// a 400 response and returns ok=false.
func parseDatasetID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("datasetID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dataset ID"})
		return 0, false
	}
	return uint(id), true
}
