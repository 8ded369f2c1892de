package exports

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"club-import/coaches"
	"club-import/common"
	"club-import/players"
	"club-import/teams"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	// BatchSize is the number of records fetched in a single query
	BatchSize = 500

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	log logrus.FieldLogger
}

func NewHandler(log logrus.FieldLogger) *Handler {
	return &Handler{log: log.WithField("component", "exports")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates/:entity_type", h.DownloadTemplate)
	rg.GET("/exports", h.StreamExport)
	rg.GET("/exports/imports/:job_id/report", h.ImportReport)
}

// TemplateHeader returns the CSV header row offered for an entity type
func TemplateHeader(entityType common.EntityType) string {
	switch entityType {
	case common.EntityPlayers:
		return players.TemplateHeader
	case common.EntityTeams:
		return teams.TemplateHeader
	case common.EntityCoaches:
		return coaches.TemplateHeader
	}
	return ""
}

func attachment(c *gin.Context, name, ext string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", slug.Make(name), ext))
}

// DownloadTemplate godoc
// @Summary Download a CSV template
// @Tags exports
// @Produce text/csv
// @Param entity_type path string true "players, teams or coaches"
// @Success 200 {file} file "Header row"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /templates/{entity_type} [get]
func (h *Handler) DownloadTemplate(c *gin.Context) {
	entityType, err := common.ParseEntityType(c.Param("entity_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attachment(c, string(entityType)+" template", "csv")
	c.Data(http.StatusOK, "text/csv", []byte(TemplateHeader(entityType)+"\n"))
}

// StreamExport godoc
// @Summary Stream existing records as CSV
// @Description Columns follow the import template so the file can be edited and imported again
// @Tags exports
// @Produce text/csv
// @Param entity_type query string true "players, teams or coaches"
// @Success 200 {file} file "Streaming export data"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /exports [get]
func (h *Handler) StreamExport(c *gin.Context) {
	entityType, err := common.ParseEntityType(c.Query("entity_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	attachment(c, string(entityType)+" "+timestamp, "csv")
	c.Header("Content-Type", "text/csv")

	c.Status(http.StatusOK)

	db := common.GetDB()
	header := strings.Split(TemplateHeader(entityType), ",")
	var total int
	switch entityType {
	case common.EntityPlayers:
		total, err = streamRows(c.Writer, db, header, (*players.PlayerModel).TemplateRow)
	case common.EntityTeams:
		total, err = streamRows(c.Writer, db, header, (*teams.TeamModel).TemplateRow)
	case common.EntityCoaches:
		total, err = streamRows(c.Writer, db, header, (*coaches.CoachModel).TemplateRow)
	}
	if err != nil {
		h.log.WithError(err).WithField("entity_type", entityType).Error("export stopped early")
	}

	c.Set("rows_processed", total)
}

// streamRows writes the header then every stored T in insertion order, one page
// of BatchSize at a time, flushing after each page
func streamRows[T any](w gin.ResponseWriter, db *gorm.DB, header []string, row func(*T) []string) (int, error) {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(header); err != nil {
		return 0, err
	}

	offset := 0
	total := 0
	for {
		var page []T
		if err := db.Order("rowid").Limit(BatchSize).Offset(offset).Find(&page).Error; err != nil {
			return total, err
		}
		for i := range page {
			if err := csvWriter.Write(row(&page[i])); err != nil {
				return total, err
			}
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return total, err
		}
		w.Flush()

		total += len(page)
		if len(page) < BatchSize {
			return total, nil
		}
		offset += BatchSize
	}
}

// ImportReport godoc
// @Summary Download an import report
// @Description XLSX workbook with a summary sheet and the per-record errors of an import job
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param job_id path string true "Import Job ID"
// @Success 200 {file} file "Report workbook"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /exports/imports/{job_id}/report [get]
func (h *Handler) ImportReport(c *gin.Context) {
	var job common.ImportJob
	if err := common.GetDB().Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		return
	}

	f, err := BuildReport(&job)
	if err != nil {
		h.log.WithError(err).WithField("job_id", job.ID).Error("failed to build import report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	defer f.Close()

	attachment(c, fmt.Sprintf("%s import %s", job.EntityType, job.CreatedAt.Format("2006-01-02 150405")), "xlsx")
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).WithField("job_id", job.ID).Error("failed to write import report")
	}
}

// BuildReport lays an import job out as a workbook with Summary, Errors and
// Link failures sheets
func BuildReport(job *common.ImportJob) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		f.Close()
		return nil, err
	}
	completed := ""
	if job.CompletedAt != nil {
		completed = job.CompletedAt.Format(time.RFC3339)
	}
	summary := [][]interface{}{
		{"Job", job.ID},
		{"File", job.FileName},
		{"Entity type", job.EntityType},
		{"Status", job.Status},
		{"Total records", job.TotalRecords},
		{"Duplicates", job.DuplicateCount},
		{"Created", job.CreatedCount},
		{"Updated", job.UpdatedCount},
		{"Skipped", job.SkippedCount},
		{"Errors", job.ErrorCount},
		{"Started", job.CreatedAt.Format(time.RFC3339)},
		{"Completed", completed},
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name string
		errs []common.RecordError
	}{
		{"Errors", common.ParseRecordErrors(job.Errors)},
		{"Link failures", common.ParseRecordErrors(job.LinkErrors)},
	}
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			f.Close()
			return nil, err
		}
		rows := [][]interface{}{{"Row", "Name", "Message"}}
		for _, e := range sheet.errs {
			rows = append(rows, []interface{}{e.RowNumber, e.Name, e.Message})
		}
		if err := writeRows(f, sheet.name, rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
