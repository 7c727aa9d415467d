package supplier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/audit"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const entitySupplier = "supplier"

type CreateSupplierRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	ContactName string `json:"contact_name" validate:"max=100"`
	Phone       string `json:"phone" validate:"max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=100"`
	Notes       string `json:"notes" validate:"max=500"`
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Email       *string `json:"email" validate:"omitempty,email,max=100"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

type SupplierResponse struct {
	ID          uint   `json:"id"`
	FarmID      uint   `json:"farm_id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Notes       string `json:"notes"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type Auditor interface {
	Write(ctx context.Context, opts audit.LogOptions)
}

// Exists reports whether supplierID belongs to farmID.
func Exists(db *gorm.DB) func(ctx context.Context, farmID, supplierID uint) (bool, error) {
	return func(ctx context.Context, farmID, supplierID uint) (bool, error) {
		var count int64
		err := db.WithContext(ctx).Model(&models.Supplier{}).
			Where("id = ? AND farm_id = ?", supplierID, farmID).
			Count(&count).Error
		return count > 0, err
	}
}

func toResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		FarmID:      s.FarmID,
		Name:        s.Name,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func writeAudit(a Auditor, c *fiber.Ctx, s *models.Supplier, action models.AuditAction, desc string, before, after any) {
	if a == nil {
		return
	}
	farmID := s.FarmID
	a.Write(c.UserContext(), audit.LogOptions{
		FarmID:      &farmID,
		UserID:      auth.UserID(c),
		UserName:    auth.UserName(c),
		EntityType:  entitySupplier,
		EntityID:    fmt.Sprint(s.ID),
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

func findSupplier(db *gorm.DB, c *fiber.Ctx) (*models.Supplier, error) {
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return nil, err
	}
	var s models.Supplier
	err = db.WithContext(c.UserContext()).
		Where("id = ? AND farm_id = ?", id, auth.ScopedFarmID(c)).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "supplier not found")
		}
		return nil, err
	}
	return &s, nil
}

// POST /api/farms/:farmId/suppliers
func CreateSupplierHandler(db *gorm.DB, a Auditor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}
		name := strings.TrimSpace(body.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "supplier name cannot be empty")
		}

		s := models.Supplier{
			FarmID:      auth.ScopedFarmID(c),
			Name:        name,
			ContactName: strings.TrimSpace(body.ContactName),
			Phone:       strings.TrimSpace(body.Phone),
			Email:       strings.ToLower(strings.TrimSpace(body.Email)),
			Notes:       strings.TrimSpace(body.Notes),
		}
		if err := db.WithContext(c.UserContext()).Create(&s).Error; err != nil {
			return err
		}

		resp := toResponse(&s)
		writeAudit(a, c, &s, models.AuditActionCreate, fmt.Sprintf("Added supplier %s", s.Name), nil, resp)
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/farms/:farmId/suppliers
func ListSuppliersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := db.WithContext(c.UserContext()).
			Where("farm_id = ?", auth.ScopedFarmID(c)).
			Order("name ASC").
			Find(&suppliers).Error; err != nil {
			return err
		}

		res := make([]SupplierResponse, 0, len(suppliers))
		for i := range suppliers {
			res = append(res, toResponse(&suppliers[i]))
		}
		return c.JSON(res)
	}
}

// PUT /api/farms/:farmId/suppliers/:id
func UpdateSupplierHandler(db *gorm.DB, a Auditor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := findSupplier(db, c)
		if err != nil {
			return err
		}
		var body UpdateSupplierRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}
		before := toResponse(s)

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "supplier name cannot be empty")
			}
			s.Name = name
		}
		if body.ContactName != nil {
			s.ContactName = strings.TrimSpace(*body.ContactName)
		}
		if body.Phone != nil {
			s.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Email != nil {
			s.Email = strings.ToLower(strings.TrimSpace(*body.Email))
		}
		if body.Notes != nil {
			s.Notes = strings.TrimSpace(*body.Notes)
		}

		if err := db.WithContext(c.UserContext()).Save(s).Error; err != nil {
			return err
		}

		resp := toResponse(s)
		writeAudit(a, c, s, models.AuditActionUpdate, fmt.Sprintf("Updated supplier %s", s.Name), before, resp)
		return c.JSON(resp)
	}
}

// DELETE /api/farms/:farmId/suppliers/:id
//
// Items and transactions keep their supplier_id after the supplier is gone.
func DeleteSupplierHandler(db *gorm.DB, a Auditor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := findSupplier(db, c)
		if err != nil {
			return err
		}
		if err := db.WithContext(c.UserContext()).Delete(s).Error; err != nil {
			return err
		}

		writeAudit(a, c, s, models.AuditActionDelete, fmt.Sprintf("Deleted supplier %s", s.Name), toResponse(s), nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
