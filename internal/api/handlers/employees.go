package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/faceattend/internal/models"
	"github.com/your-org/faceattend/internal/recognition"
	"github.com/your-org/faceattend/internal/storage"
	"github.com/your-org/faceattend/pkg/dto"
)

// nearDuplicateThreshold flags an enrollment whose embedding nearly
// matches another employee's; the enrollment still succeeds, the response
// just carries a warning.
const nearDuplicateThreshold = 0.7

type EmployeeHandler struct {
	db     *storage.PostgresStore
	minio  *storage.MinIOStore
	engine *recognition.Engine
}

func NewEmployeeHandler(db *storage.PostgresStore, minio *storage.MinIOStore, engine *recognition.Engine) *EmployeeHandler {
	return &EmployeeHandler{db: db, minio: minio, engine: engine}
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp := &models.Employee{
		Code:         req.Code,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		DepartmentID: req.DepartmentID,
		ShiftID:      req.ShiftID,
	}
	if err := h.db.CreateEmployee(c.Request.Context(), emp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, h.employeeResponse(c, emp))
}

func (h *EmployeeHandler) List(c *gin.Context) {
	activeOnly := c.Query("include_inactive") == ""

	employees, err := h.db.ListEmployees(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		resp = append(resp, h.employeeResponse(c, &employees[i]))
	}
	c.JSON(http.StatusOK, gin.H{"employees": resp, "total": len(resp)})
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	emp, ok := h.loadEmployee(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.employeeResponse(c, emp))
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	emp, ok := h.loadEmployee(c)
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Code != nil {
		emp.Code = *req.Code
	}
	if req.FirstName != nil {
		emp.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		emp.LastName = *req.LastName
	}
	if req.Email != nil {
		emp.Email = req.Email
	}
	if req.Phone != nil {
		emp.Phone = req.Phone
	}
	if req.DepartmentID != nil {
		emp.DepartmentID = req.DepartmentID
	}
	if req.ShiftID != nil {
		emp.ShiftID = req.ShiftID
	}
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}

	if err := h.db.UpdateEmployee(c.Request.Context(), emp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.employeeResponse(c, emp))
}

func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	if err := h.db.DeactivateEmployee(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// RegisterFace enrolls a face for the employee from a multipart image
// upload. Re-registering replaces the previous descriptor.
func (h *EmployeeHandler) RegisterFace(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	desc, _, err := h.engine.RegisterFace(c.Request.Context(), id, imageData)
	if err != nil {
		var inputErr *recognition.InputError
		if errors.As(err, &inputErr) && inputErr.Reason == "employee not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": inputErr.Reason})
			return
		}
		writeRecognitionError(c, err)
		return
	}

	resp := dto.RegisterFaceResponse{
		EmployeeID:         desc.EmployeeID,
		LivenessConfidence: desc.LivenessConfidence,
		EnrolledAt:         desc.EnrolledAt,
	}

	// warn if this face nearly matches someone else's enrollment
	if near, err := h.db.NearestDescriptor(c.Request.Context(), desc.Embedding, id); err == nil &&
		near != nil && near.Similarity >= nearDuplicateThreshold {
		resp.NearDuplicate = &dto.NearDuplicate{
			EmployeeID: near.EmployeeID,
			Similarity: near.Similarity,
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// GetFaceData describes the employee's enrollment without exposing the
// descriptor vector.
func (h *EmployeeHandler) GetFaceData(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	desc, err := h.db.GetDescriptor(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if desc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no face data enrolled"})
		return
	}

	c.JSON(http.StatusOK, dto.FaceDataResponse{
		EmployeeID:         desc.EmployeeID,
		Format:             desc.Format,
		LivenessConfidence: desc.LivenessConfidence,
		ImageKey:           desc.ImageKey,
		EnrolledAt:         desc.EnrolledAt,
	})
}

// DeleteFaceData removes the enrollment and its stored photo.
func (h *EmployeeHandler) DeleteFaceData(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	desc, err := h.db.GetDescriptor(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if desc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no face data enrolled"})
		return
	}

	if err := h.db.DeleteDescriptor(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if desc.ImageKey != "" {
		_ = h.minio.DeleteObject(c.Request.Context(), desc.ImageKey)
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *EmployeeHandler) loadEmployee(c *gin.Context) (*models.Employee, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return nil, false
	}

	emp, err := h.db.GetEmployee(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return nil, false
	}
	return emp, true
}

func (h *EmployeeHandler) employeeResponse(c *gin.Context, emp *models.Employee) dto.EmployeeResponse {
	hasFace := false
	if desc, err := h.db.GetDescriptor(c.Request.Context(), emp.ID); err == nil && desc != nil {
		hasFace = true
	}

	return dto.EmployeeResponse{
		ID:           emp.ID,
		Code:         emp.Code,
		FirstName:    emp.FirstName,
		LastName:     emp.LastName,
		Email:        emp.Email,
		Phone:        emp.Phone,
		DepartmentID: emp.DepartmentID,
		ShiftID:      emp.ShiftID,
		IsActive:     emp.IsActive,
		HasFaceData:  hasFace,
		CreatedAt:    emp.CreatedAt,
	}
}
