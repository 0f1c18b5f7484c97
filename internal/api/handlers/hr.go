package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/models"
	"github.com/your-org/faceattend/internal/storage"
	"github.com/your-org/faceattend/pkg/dto"
)

type HRHandler struct {
	db *storage.PostgresStore
}

func NewHRHandler(db *storage.PostgresStore) *HRHandler {
	return &HRHandler{db: db}
}

func (h *HRHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dep, err := h.db.CreateDepartment(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.DepartmentResponse{
		ID:          dep.ID,
		Name:        dep.Name,
		Description: dep.Description,
		CreatedAt:   dep.CreatedAt,
	})
}

func (h *HRHandler) ListDepartments(c *gin.Context) {
	departments, err := h.db.ListDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.DepartmentResponse, 0, len(departments))
	for _, dep := range departments {
		resp = append(resp, dto.DepartmentResponse{
			ID:          dep.ID,
			Name:        dep.Name,
			Description: dep.Description,
			CreatedAt:   dep.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"departments": resp, "total": len(resp)})
}

func (h *HRHandler) DeleteDepartment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
		return
	}

	if err := h.db.DeleteDepartment(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *HRHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sh := &models.Shift{
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}
	// validate the HH:MM clock strings up front
	if _, err := sh.StartOn(time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time, want HH:MM"})
		return
	}
	if _, err := sh.EndOn(time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time, want HH:MM"})
		return
	}

	if err := h.db.CreateShift(c.Request.Context(), sh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.ShiftResponse{
		ID:          sh.ID,
		Name:        sh.Name,
		StartTime:   sh.StartTime,
		EndTime:     sh.EndTime,
		Description: sh.Description,
		CreatedAt:   sh.CreatedAt,
	})
}

func (h *HRHandler) ListShifts(c *gin.Context) {
	shifts, err := h.db.ListShifts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		resp = append(resp, dto.ShiftResponse{
			ID:          sh.ID,
			Name:        sh.Name,
			StartTime:   sh.StartTime,
			EndTime:     sh.EndTime,
			Description: sh.Description,
			CreatedAt:   sh.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"shifts": resp, "total": len(resp)})
}

func (h *HRHandler) DeleteShift(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift id"})
		return
	}

	if err := h.db.DeleteShift(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
