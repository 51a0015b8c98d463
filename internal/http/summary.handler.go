package http

import (
	"net/http"

	"github.com/equipstat/equipstat/internal/apierror"
	"github.com/equipstat/equipstat/internal/appcontext"
	"github.com/equipstat/equipstat/internal/stats"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GetSummary(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetID, ok := parseDatasetID(c)
		if !ok {
			return
		}

		summary, err := stats.Summarize(ctx.DB, datasetID)
		if err != nil {
			if apierror.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.Logger.Error("Failed to compute summary", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"dataset_id":   summary.DatasetID,
			"dataset_name": summary.DatasetName,
			"uploaded_at":  summary.UploadedAt,
			"summary": gin.H{
				"total_count":       summary.TotalCount,
				"averages":          summary.Averages,
				"type_distribution": summary.Distribution,
			},
		})
	}
}
