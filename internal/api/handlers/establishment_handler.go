// server/internal/api/handlers/establishment_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

// Establishments is implemented by service.EstablishmentService.
type Establishments interface {
	Get(ctx context.Context, id string) (*models.Establishment, error)
	List(ctx context.Context, f models.EstablishmentFilter) ([]models.Establishment, error)
	DueList(ctx context.Context) ([]models.DueEstablishment, error)
	InspectionsToday(ctx context.Context) ([]models.Establishment, error)
	Analytics(ctx context.Context) (models.Analytics, error)
	Create(ctx context.Context, in service.EstablishmentInput) (*models.Establishment, error)
	Update(ctx context.Context, id string, in service.EstablishmentInput) (*models.Establishment, error)
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ToggleCompliance(ctx context.Context, id string) (string, error)
	SetCompliance(ctx context.Context, id, value string) (string, error)
	AddRemark(ctx context.Context, id, message string) (models.Remark, error)
	RecordIssuance(ctx context.Context, id string) (time.Time, error)
	Certificate(ctx context.Context, id string) ([]byte, string, error)
}

type EstablishmentHandler struct {
	Service Establishments
}

type ComplianceRequest struct {
	// Empty flips the current value.
	Compliance string `json:"compliance"`
}

type RemarkRequest struct {
	Message string `json:"message"`
}

// ListEstablishments accepts ?status=active|archived|all (default active) and ?q=.
func (h *EstablishmentHandler) ListEstablishments(c *gin.Context) {
	filter := models.EstablishmentFilter{Search: c.Query("q")}
	switch strings.ToLower(c.DefaultQuery("status", "active")) {
	case "active":
		active := true
		filter.Active = &active
	case "archived":
		active := false
		filter.Active = &active
	case "all":
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Error: "status must be active, archived or all"})
		return
	}

	list, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		respondReadError(c, err)
		return
	}
	if list == nil {
		list = []models.Establishment{}
	}
	respondData(c, list)
}

func (h *EstablishmentHandler) GetEstablishment(c *gin.Context) {
	e, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondReadError(c, err)
		return
	}
	respondData(c, e)
}

func (h *EstablishmentHandler) CreateEstablishment(c *gin.Context) {
	var in service.EstablishmentInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": fmt.Sprintf("Establishment %s created", e.FSICNumber),
		"data":    e,
	})
}

func (h *EstablishmentHandler) UpdateEstablishment(c *gin.Context) {
	var in service.EstablishmentInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := h.Service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Establishment %s updated", e.FSICNumber),
		"data":    e,
	})
}

func (h *EstablishmentHandler) DeleteEstablishment(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondActionError(c, err)
		return
	}
	respondAction(c, http.StatusOK, "Establishment deleted")
}

func (h *EstablishmentHandler) ArchiveEstablishment(c *gin.Context) {
	if err := h.Service.Archive(c.Request.Context(), c.Param("id")); err != nil {
		respondActionError(c, err)
		return
	}
	respondAction(c, http.StatusOK, "Establishment archived")
}

func (h *EstablishmentHandler) RestoreEstablishment(c *gin.Context) {
	if err := h.Service.Restore(c.Request.Context(), c.Param("id")); err != nil {
		respondActionError(c, err)
		return
	}
	respondAction(c, http.StatusOK, "Establishment restored")
}

// UpdateCompliance sets the value given in the body, or flips it when the body
// is empty.
func (h *EstablishmentHandler) UpdateCompliance(c *gin.Context) {
	var req ComplianceRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	var (
		value string
		err   error
	)
	if req.Compliance == "" {
		value, err = h.Service.ToggleCompliance(c.Request.Context(), c.Param("id"))
	} else {
		value, err = h.Service.SetCompliance(c.Request.Context(), c.Param("id"), req.Compliance)
	}
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Compliance set to " + value,
		"compliance": value,
	})
}

func (h *EstablishmentHandler) AddRemark(c *gin.Context) {
	var req RemarkRequest
	if !bindJSON(c, &req) {
		return
	}
	remark, err := h.Service.AddRemark(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Remark added",
		"data":    remark,
	})
}

func (h *EstablishmentHandler) RecordIssuance(c *gin.Context) {
	issuedAt, err := h.Service.RecordIssuance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Issuance recorded",
		"lastIssuanceDate": issuedAt,
	})
}

// DownloadCertificate streams the certificate PDF.
func (h *EstablishmentHandler) DownloadCertificate(c *gin.Context) {
	pdf, filename, err := h.Service.Certificate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetDue is the due-this-month report.
func (h *EstablishmentHandler) GetDue(c *gin.Context) {
	list, err := h.Service.DueList(c.Request.Context())
	if err != nil {
		respondReadError(c, err)
		return
	}
	respondData(c, list)
}

func (h *EstablishmentHandler) GetInspectionsToday(c *gin.Context) {
	list, err := h.Service.InspectionsToday(c.Request.Context())
	if err != nil {
		respondReadError(c, err)
		return
	}
	if list == nil {
		list = []models.Establishment{}
	}
	respondData(c, list)
}

func (h *EstablishmentHandler) GetAnalytics(c *gin.Context) {
	a, err := h.Service.Analytics(c.Request.Context())
	if err != nil {
		respondReadError(c, err)
		return
	}
	respondData(c, a)
}
