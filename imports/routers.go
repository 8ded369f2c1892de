package imports

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"club-import/common"
	"club-import/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MaxUploadSize caps the CSV accepted by CreateImport
const MaxUploadSize = 10 << 20

// CreateImportResponse is returned when a file is uploaded for preview
type CreateImportResponse struct {
	JobID     string   `json:"job_id"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at"`
	Preview   *Preview `json:"preview,omitempty"`
}

// GetImportResponse represents the response for import job status
type GetImportResponse struct {
	JobID          string               `json:"job_id"`
	EntityType     string               `json:"entity_type"`
	Status         string               `json:"status"`
	FileName       string               `json:"file_name,omitempty"`
	TotalRecords   int                  `json:"total_records"`
	DuplicateCount int                  `json:"duplicate_count"`
	ProcessedCount int                  `json:"processed_count"`
	Progress       int                  `json:"progress"`
	CreatedCount   int                  `json:"created_count"`
	UpdatedCount   int                  `json:"updated_count"`
	SkippedCount   int                  `json:"skipped_count"`
	ErrorCount     int                  `json:"error_count"`
	Errors         []common.RecordError `json:"errors,omitempty"`
	LinkErrors     []common.RecordError `json:"link_errors,omitempty"`
	Preview        *Preview             `json:"preview,omitempty"`
	CreatedAt      string               `json:"created_at"`
	UpdatedAt      string               `json:"updated_at"`
	CompletedAt    *string              `json:"completed_at,omitempty"`
}

// UpdateActionsRequest maps record indices to skip or replace
type UpdateActionsRequest struct {
	Actions map[string]string `json:"actions" binding:"required"`
}

// CleanupPreviewResponse lists the duplicate groups a cleanup would resolve
type CleanupPreviewResponse struct {
	EntityType  common.EntityType `json:"entity_type"`
	Groups      []DuplicateGroup  `json:"groups"`
	RemoveCount int               `json:"remove_count"`
}

type Handler struct {
	store    store.Store
	cfg      *common.Config
	log      logrus.FieldLogger
	sessions *Registry
}

func NewHandler(st store.Store, cfg *common.Config, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:    st,
		cfg:      cfg,
		log:      log.WithField("component", "imports"),
		sessions: NewRegistry(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/imports", h.CreateImport)
	rg.GET("/imports/:job_id", h.GetImport)
	rg.PUT("/imports/:job_id/actions", h.UpdateActions)
	rg.POST("/imports/:job_id/commit", h.CommitImport)
	rg.POST("/imports/:job_id/cancel", h.CancelImport)
	rg.DELETE("/imports/:job_id", h.ResetImport)

	rg.GET("/cleanup/:entity_type", h.PreviewCleanup)
	rg.POST("/cleanup/:entity_type", h.RunCleanup)
}

// CreateImport godoc
// @Summary Upload a CSV for preview
// @Description Parses the file, resolves duplicates and fuzzy links, and stores a job in previewing state
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param Idempotency-Key header string true "Unique key to prevent duplicate imports"
// @Param file formData file true "CSV file to import"
// @Param entity_type formData string true "players, teams or coaches"
// @Success 201 {object} CreateImportResponse "Preview created"
// @Success 200 {object} CreateImportResponse "Existing job returned (idempotency)"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /imports [post]
func (h *Handler) CreateImport(c *gin.Context) {
	db := common.GetDB()

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}

	var existingJob common.ImportJob
	if err := db.Where("idempotency_key = ?", idempotencyKey).First(&existingJob).Error; err == nil {
		resp := CreateImportResponse{
			JobID:     existingJob.ID,
			Status:    existingJob.Status,
			CreatedAt: existingJob.CreatedAt.Format(time.RFC3339),
		}
		if session, ok := h.sessions.Get(existingJob.ID); ok {
			resp.Preview, _ = session.CurrentPreview()
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	entityType, err := common.ParseEntityType(c.PostForm("entity_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be .csv"})
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(content) > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}

	filePath, err := saveUpload(h.cfg.UploadsDir, content)
	if err != nil {
		h.log.WithError(err).Error("failed to save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to load entity snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load existing records"})
		return
	}

	session := NewSession()
	preview, err := session.Preview(string(content), entityType, snap)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	job := common.ImportJob{
		ID:             uuid.New().String(),
		IdempotencyKey: idempotencyKey,
		EntityType:     string(entityType),
		Status:         common.JobStatusPreviewing,
		FileName:       header.Filename,
		FilePath:       filePath,
		TotalRecords:   len(preview.Records),
		DuplicateCount: preview.DuplicateCount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job"})
		return
	}
	h.sessions.Put(job.ID, session)

	c.Set("rows_processed", job.TotalRecords)
	h.log.WithFields(logrus.Fields{
		"job_id":      job.ID,
		"entity_type": entityType,
		"records":     job.TotalRecords,
		"duplicates":  job.DuplicateCount,
	}).Info("import previewed")

	c.JSON(http.StatusCreated, CreateImportResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		Preview:   preview,
	})
}

// GetImport godoc
// @Summary Get import job status
// @Description Retrieves the status, progress and counters of an import job
// @Tags imports
// @Produce json
// @Param job_id path string true "Import Job ID"
// @Success 200 {object} GetImportResponse "Import job details"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /imports/{job_id} [get]
func (h *Handler) GetImport(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}

	c.Set("rows_processed", job.ProcessedCount)

	response := GetImportResponse{
		JobID:          job.ID,
		EntityType:     job.EntityType,
		Status:         job.Status,
		FileName:       job.FileName,
		TotalRecords:   job.TotalRecords,
		DuplicateCount: job.DuplicateCount,
		ProcessedCount: job.ProcessedCount,
		Progress:       job.Progress,
		CreatedCount:   job.CreatedCount,
		UpdatedCount:   job.UpdatedCount,
		SkippedCount:   job.SkippedCount,
		ErrorCount:     job.ErrorCount,
		Errors:         common.ParseRecordErrors(job.Errors),
		LinkErrors:     common.ParseRecordErrors(job.LinkErrors),
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		completedAt := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedAt
	}
	if session, ok := h.sessions.Get(job.ID); ok && session.State() == StatePreviewing {
		response.Preview, _ = session.CurrentPreview()
	}

	c.JSON(http.StatusOK, response)
}

// UpdateActions godoc
// @Summary Choose skip or replace for duplicate records
// @Tags imports
// @Accept json
// @Produce json
// @Param job_id path string true "Import Job ID"
// @Param body body UpdateActionsRequest true "Actions keyed by record index"
// @Success 200 {object} map[string]interface{} "Current actions"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 409 {object} map[string]string "Import is not in preview"
// @Router /imports/{job_id}/actions [put]
func (h *Handler) UpdateActions(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req UpdateActionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for key, value := range req.Actions {
		index, err := strconv.Atoi(key)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "action keys must be record indices"})
			return
		}
		if err := session.SetAction(index, DuplicateAction(value)); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrInvalidTransition) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
	}

	preview, ok := session.CurrentPreview()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "Import session was reset"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": preview.Actions})
}

// CommitImport godoc
// @Summary Commit a previewed import
// @Description Writes the records in paced batches in the background
// @Tags imports
// @Produce json
// @Param job_id path string true "Import Job ID"
// @Success 202 {object} map[string]string "Commit started"
// @Failure 409 {object} map[string]string "Import is not in preview"
// @Router /imports/{job_id}/commit [post]
func (h *Handler) CommitImport(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}
	jobID := c.Param("job_id")
	log := h.log.WithField("job_id", jobID)

	opts := OptionsFrom(h.cfg.Import, log)
	opts.OnProgress = func(p Progress) {
		h.saveProgress(jobID, p)
	}

	// the commit outlives the request
	done, err := session.Start(context.Background(), h.store, opts)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	common.GetDB().Model(&common.ImportJob{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"status":     common.JobStatusProcessing,
		"updated_at": time.Now(),
	})

	go func() {
		h.finishJob(jobID, <-done)
	}()

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": common.JobStatusProcessing})
}

// CancelImport godoc
// @Summary Cancel a running commit
// @Description Stops dispatching batches; records not yet submitted are reported as errors
// @Tags imports
// @Produce json
// @Param job_id path string true "Import Job ID"
// @Success 202 {object} map[string]string "Cancellation requested"
// @Failure 409 {object} map[string]string "Import is not committing"
// @Router /imports/{job_id}/cancel [post]
func (h *Handler) CancelImport(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}
	if !session.Cancel() {
		c.JSON(http.StatusConflict, gin.H{"error": "Import is not committing"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": c.Param("job_id"), "status": "cancelling"})
}

// ResetImport godoc
// @Summary Discard an import session
// @Tags imports
// @Param job_id path string true "Import Job ID"
// @Success 204 "Session discarded"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /imports/{job_id} [delete]
func (h *Handler) ResetImport(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	if session, ok := h.sessions.Get(job.ID); ok {
		session.Reset()
		h.sessions.Delete(job.ID)
	}

	if job.Status == common.JobStatusPreviewing || job.Status == common.JobStatusProcessing {
		common.GetDB().Model(&common.ImportJob{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
			"status":     common.JobStatusDiscarded,
			"updated_at": time.Now(),
		})
	}
	c.Status(http.StatusNoContent)
}

// PreviewCleanup godoc
// @Summary List existing duplicates
// @Tags cleanup
// @Produce json
// @Param entity_type path string true "players, teams or coaches"
// @Success 200 {object} CleanupPreviewResponse "Duplicate groups"
// @Router /cleanup/{entity_type} [get]
func (h *Handler) PreviewCleanup(c *gin.Context) {
	entityType, groups, ok := h.duplicateGroups(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, CleanupPreviewResponse{
		EntityType:  entityType,
		Groups:      groups,
		RemoveCount: RemovalCount(groups),
	})
}

// RunCleanup godoc
// @Summary Delete existing duplicates
// @Description Keeps the first entity of each duplicate group and deletes the rest in paced batches
// @Tags cleanup
// @Produce json
// @Param entity_type path string true "players, teams or coaches"
// @Success 200 {object} Outcome "Cleanup outcome"
// @Router /cleanup/{entity_type} [post]
func (h *Handler) RunCleanup(c *gin.Context) {
	entityType, groups, ok := h.duplicateGroups(c)
	if !ok {
		return
	}
	log := h.log.WithField("entity_type", entityType)
	outcome := Cleanup(c.Request.Context(), entityType, groups, h.store, OptionsFrom(h.cfg.Cleanup, log))

	c.Set("rows_processed", outcome.Total)
	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) duplicateGroups(c *gin.Context) (common.EntityType, []DuplicateGroup, bool) {
	entityType, err := common.ParseEntityType(c.Param("entity_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", nil, false
	}
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to load entity snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load existing records"})
		return "", nil, false
	}
	return entityType, FindDuplicateGroups(entityType, snap), true
}

// saveUpload keeps a copy of the uploaded file for later inspection
func saveUpload(dir string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	fileName := fmt.Sprintf("%s_%s.csv", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	filePath := filepath.Join(dir, fileName)
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return "", err
	}
	return filePath, nil
}

func (h *Handler) loadJob(c *gin.Context) (*common.ImportJob, bool) {
	var job common.ImportJob
	if err := common.GetDB().Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load import job"})
		}
		return nil, false
	}
	return &job, true
}

func (h *Handler) loadSession(c *gin.Context) (*Session, bool) {
	session, ok := h.sessions.Get(c.Param("job_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import session not found"})
		return nil, false
	}
	return session, true
}

// saveProgress persists counters after every settled batch
func (h *Handler) saveProgress(jobID string, p Progress) {
	err := common.GetDB().Model(&common.ImportJob{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"processed_count": p.Processed,
		"progress":        p.Percent,
		"created_count":   p.Created,
		"updated_count":   p.Updated,
		"skipped_count":   p.Skipped,
		"error_count":     p.Errored,
		"updated_at":      time.Now(),
	}).Error
	if err != nil {
		h.log.WithError(err).WithField("job_id", jobID).Warn("failed to save import progress")
	}
}

func (h *Handler) finishJob(jobID string, outcome *Outcome) {
	status := common.JobStatusCompleted
	if outcome.Cancelled {
		status = common.JobStatusCancelled
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":        status,
		"created_count": outcome.Created,
		"updated_count": outcome.Updated,
		"skipped_count": outcome.Skipped,
		"error_count":   outcome.Errored(),
		"errors":        common.RecordErrorsJSON(outcome.Errors),
		"link_errors":   common.RecordErrorsJSON(outcome.LinkFailures),
		"updated_at":    now,
		"completed_at":  &now,
	}
	// a cancelled run keeps the processed count and percent of its last settled batch
	if !outcome.Cancelled {
		updates["processed_count"] = outcome.Total
		updates["progress"] = 100
	}

	// a discarded job keeps its status even if the commit settles afterwards
	err := common.GetDB().Model(&common.ImportJob{}).
		Where("id = ? AND status <> ?", jobID, common.JobStatusDiscarded).
		Updates(updates).Error
	if err != nil {
		h.log.WithError(err).WithField("job_id", jobID).Error("failed to save import outcome")
	}
}
