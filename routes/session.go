package routes

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"summarysnap/internal/auth"
	"summarysnap/internal/config"
	"summarysnap/internal/logger"
	"summarysnap/middleware"
	"summarysnap/models"
	"summarysnap/services"
	"summarysnap/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const excerptRunes = 200

// SetupHealthRoutes registers the liveness probe.
func SetupHealthRoutes(router *gin.Engine, store *services.SessionStore) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"sessions": store.Len(),
			"time":     time.Now().UTC(),
		})
	})
}

// SetupSessionRoutes registers session creation and every per-session
// action under /api/v1.
func SetupSessionRoutes(router *gin.Engine, cfg *config.Config, store *services.SessionStore, pipeline *services.Pipeline, issuer *auth.TokenIssuer) {
	api := router.Group("/api/v1")

	api.POST("/sessions", func(c *gin.Context) {
		s := store.Create()
		token, exp, err := issuer.IssueSessionToken(s.ID)
		if err != nil {
			_ = store.Destroy(s.ID)
			logger.Error("failed to issue session token", "error", err, "request_id", middleware.GetRequestID(c))
			utils.RespondWithInternalError(c, "Failed to create session", nil)
			return
		}
		c.JSON(http.StatusCreated, models.CreateSessionResponse{
			SessionID: s.ID,
			Token:     token,
			ExpiresAt: exp,
		})
	})

	session := api.Group("/session")
	session.Use(middleware.RequireSession(issuer, store))

	session.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.GetSession(c).Snapshot())
	})

	session.DELETE("", func(c *gin.Context) {
		s := middleware.GetSession(c)
		if err := store.Destroy(s.ID); err != nil {
			utils.RespondWithNotFound(c, "Session not found or expired")
			return
		}
		c.Status(http.StatusNoContent)
	})

	session.POST("/document", func(c *gin.Context) {
		s := middleware.GetSession(c)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxFileSize+1<<20)
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "A PDF must be uploaded in the 'file' field", gin.H{"error": err.Error()})
			return
		}
		defer file.Close()

		if header.Size > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("File exceeds the %d byte limit", cfg.MaxFileSize), nil)
			return
		}
		if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			utils.RespondWithBadRequest(c, "Only PDF files are accepted", gin.H{"filename": header.Filename})
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithBadRequest(c, "Failed to read upload", gin.H{"error": err.Error()})
			return
		}

		doc := &models.Document{
			ID:       uuid.NewString(),
			Filename: filepath.Base(header.Filename),
			Content:  content,
			Status:   models.StatusUnprocessed,
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		info, err := pipeline.ProcessDocument(ctx, s, doc)
		if err != nil {
			utils.RespondWithPipelineError(c, err, services.ErrInvalidInput)
			return
		}

		c.JSON(http.StatusOK, models.UploadResponse{
			Document: *info,
			State:    string(models.SessionReady),
			Message:  "PDF processed successfully",
		})
	})

	session.POST("/summary", func(c *gin.Context) {
		var req models.SummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		resp, err := pipeline.Summarize(ctx, middleware.GetSession(c), models.NormalizeStyle(req.Style))
		if err != nil {
			utils.RespondWithPipelineError(c, err, services.ErrInvalidInput)
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	session.GET("/summary/download", func(c *gin.Context) {
		style := models.NormalizeStyle(c.DefaultQuery("style", string(models.StyleLong)))

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		resp, err := pipeline.Summarize(ctx, middleware.GetSession(c), style)
		if err != nil {
			utils.RespondWithPipelineError(c, err, services.ErrInvalidInput)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=summary.txt")
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(resp.Summary))
	})

	session.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		answer, turns, err := pipeline.Ask(ctx, middleware.GetSession(c), req.Question)
		if err != nil {
			utils.RespondWithPipelineError(c, err, services.ErrInvalidInput)
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{
			Answer:    answer.Text,
			Sources:   sourceRefs(answer.Sources),
			Turns:     turns,
			Timestamp: time.Now().UTC(),
		})
	})

	session.GET("/chat", func(c *gin.Context) {
		turns := middleware.GetSession(c).Transcript()
		if turns == nil {
			turns = []models.ConversationTurn{}
		}
		c.JSON(http.StatusOK, models.TranscriptResponse{Turns: turns})
	})

	session.DELETE("/chat", func(c *gin.Context) {
		pipeline.ClearChat(middleware.GetSession(c))
		c.Status(http.StatusNoContent)
	})

	session.GET("/chat/export", func(c *gin.Context) {
		turns := middleware.GetSession(c).Transcript()

		switch format := c.DefaultQuery("format", services.ExportFormatText); format {
		case services.ExportFormatText:
			c.Header("Content-Disposition", "attachment; filename=chat.txt")
			c.Data(http.StatusOK, "text/plain; charset=utf-8", services.TranscriptText(turns))
		case services.ExportFormatExcel:
			data, err := services.TranscriptExcel(turns)
			if err != nil {
				logger.Error("transcript export failed", "error", err, "request_id", middleware.GetRequestID(c))
				utils.RespondWithInternalError(c, "Failed to export transcript", nil)
				return
			}
			c.Header("Content-Disposition", "attachment; filename=chat.xlsx")
			c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		default:
			utils.RespondWithBadRequest(c, "Unsupported export format",
				gin.H{"format": format, "supported": []string{services.ExportFormatText, services.ExportFormatExcel}})
		}
	})
}

func sourceRefs(hits []models.ScoredChunk) []models.SourceRef {
	refs := make([]models.SourceRef, 0, len(hits))
	for _, h := range hits {
		refs = append(refs, models.SourceRef{
			ChunkID: h.Chunk.ID,
			Page:    h.Chunk.Page,
			Score:   h.Score,
			Excerpt: excerpt(h.Chunk.Text),
		})
	}
	return refs
}

func excerpt(text string) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) <= excerptRunes {
		return string(r)
	}
	return string(r[:excerptRunes]) + "..."
}
