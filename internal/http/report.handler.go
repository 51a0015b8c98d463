package http

import (
	"fmt"
	"net/http"

	"github.com/equipstat/equipstat/internal/apierror"
	"github.com/equipstat/equipstat/internal/appcontext"
	"github.com/equipstat/equipstat/internal/report"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GeneratePDF(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetID, ok := parseDatasetID(c)
		if !ok {
			return
		}

		pdfBytes, err := report.Generate(ctx.DB, datasetID)
		if err != nil {
			if apierror.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.Logger.Error("Failed to generate PDF report", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(datasetID)))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	}
}
