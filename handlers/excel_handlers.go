package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/services"
	"github.com/casualfootball/cffa-backend/utils"
)

const maxImportSize = 10 << 20

// ExportHandler serves spreadsheet and archive downloads and imports
type ExportHandler struct {
	excelService   *services.ExcelService
	archiveService *services.ArchiveService
}

// NewExportHandler creates a new export handler
func NewExportHandler(excelService *services.ExcelService, archiveService *services.ArchiveService) *ExportHandler {
	return &ExportHandler{excelService: excelService, archiveService: archiveService}
}

// ExportExcel handles GET /export/excel
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	excelFile, filename, err := h.excelService.ExportTeamToExcel(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer excelFile.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := excelFile.Write(c.Writer); err != nil {
		log.Error().Err(err).Str("team", middleware.TeamID(c)).Msg("failed to write Excel file")
	}
}

// ExportArchive handles GET /export/archive
func (h *ExportHandler) ExportArchive(c *gin.Context) {
	teamID := middleware.TeamID(c)
	filename, err := h.archiveService.ArchiveFilename(c.Request.Context(), teamID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Status(http.StatusOK)

	if err := h.archiveService.WriteArchive(c.Request.Context(), teamID, c.Writer); err != nil {
		log.Error().Err(err).Str("team", teamID).Msg("failed to write archive")
	}
}

// ImportExcel handles POST /import/excel with the workbook in the "file"
// form field. The team's players, games and payments are replaced.
func (h *ExportHandler) ImportExcel(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	header, err := c.FormFile("file")
	if err != nil {
		utils.HandleError(c, utils.NewBadRequestError("an Excel file is required in the file field"))
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.HandleError(c, utils.NewBadRequestError("uploaded file could not be read"))
		return
	}
	defer file.Close()

	result, err := h.excelService.ImportTeamFromExcel(c.Request.Context(), middleware.TeamID(c), file)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, result)
}
