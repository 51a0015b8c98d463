package http

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/equipstat/equipstat/internal/apierror"
	"github.com/equipstat/equipstat/internal/appcontext"
	"github.com/equipstat/equipstat/internal/ingest"
	"github.com/equipstat/equipstat/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UploadCSV(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := utils.GetUserIDFromClaims(c)
		if err != nil {
			ctx.Logger.Error("Failed to get user ID from claims", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
			return
		}

		if !isCSVFile(file) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type, only CSV files are allowed"})
			return
		}

		src, err := file.Open()
		if err != nil {
			ctx.Logger.Error("Failed to open uploaded file", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer src.Close()

		rows, err := ingest.ParseCSV(src)
		if err != nil {
			if apierror.IsValidation(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Logger.Error("Failed to parse uploaded file", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := ingest.Ingest(ctx.DB, file.Filename, rows)
		if err != nil {
			ctx.Logger.Error("Failed to ingest uploaded file", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx.Logger.Info("CSV ingested",
			zap.String("user_id", userID.String()),
			zap.Uint("dataset_id", result.DatasetID),
			zap.Int("rows", result.Count))

		c.JSON(http.StatusCreated, gin.H{
			"message":         "CSV uploaded successfully",
			"dataset_id":      result.DatasetID,
			"dataset_name":    result.DatasetName,
			"uploaded_at":     result.UploadedAt,
			"equipment_count": result.Count,
			"equipment":       result.Equipments,
		})
	}
}

func isCSVFile(file *multipart.FileHeader) bool {
	return strings.ToLower(filepath.Ext(file.Filename)) == ".csv"
}
