package admin

import (
	"errors"
	"strings"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FarmResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type CreateFarmRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"max=255"`
	Phone    string `json:"phone" validate:"max=50"`
}

type UpdateFarmRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Location *string `json:"location" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
}

type CreateFarmManagerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type FarmManagerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FarmID    *uint  `json:"farm_id"`
	CreatedAt string `json:"created_at"`
}

func toFarmResponse(f *models.Farm) FarmResponse {
	return FarmResponse{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Phone:     f.Phone,
		CreatedAt: f.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func findFarm(db *gorm.DB, c *fiber.Ctx) (*models.Farm, error) {
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return nil, err
	}
	var farm models.Farm
	if err := db.WithContext(c.UserContext()).First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "farm not found")
		}
		return nil, err
	}
	return &farm, nil
}

// POST /api/admin/farms
func CreateFarmHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFarmRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}

		farm := models.Farm{
			Name:     strings.TrimSpace(body.Name),
			Location: strings.TrimSpace(body.Location),
			Phone:    strings.TrimSpace(body.Phone),
		}
		if farm.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "farm name cannot be empty")
		}

		var count int64
		if err := db.Model(&models.Farm{}).Where("name = ?", farm.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "a farm with this name already exists")
		}

		if err := db.WithContext(c.UserContext()).Create(&farm).Error; err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toFarmResponse(&farm))
	}
}

// GET /api/admin/farms
func ListFarmsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var farms []models.Farm
		if err := db.WithContext(c.UserContext()).Order("name ASC").Find(&farms).Error; err != nil {
			return err
		}

		res := make([]FarmResponse, 0, len(farms))
		for i := range farms {
			res = append(res, toFarmResponse(&farms[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/farms/:id
func GetFarmHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farm, err := findFarm(db, c)
		if err != nil {
			return err
		}
		return c.JSON(toFarmResponse(farm))
	}
}

// PUT /api/admin/farms/:id
func UpdateFarmHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farm, err := findFarm(db, c)
		if err != nil {
			return err
		}

		var body UpdateFarmRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "farm name cannot be empty")
			}
			farm.Name = name
		}
		if body.Location != nil {
			farm.Location = strings.TrimSpace(*body.Location)
		}
		if body.Phone != nil {
			farm.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := db.WithContext(c.UserContext()).Save(farm).Error; err != nil {
			return err
		}
		return c.JSON(toFarmResponse(farm))
	}
}

// DELETE /api/admin/farms/:id
//
// A farm that still holds unarchived inventory cannot be deleted. Its
// suppliers and manager accounts go with it; archived items, their
// transactions and feeding records keep the farm id.
func DeleteFarmHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farm, err := findFarm(db, c)
		if err != nil {
			return err
		}

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			// Lock the farm row so no item can be created for it meanwhile.
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&models.Farm{}, farm.ID).Error; err != nil {
				return err
			}
			var items int64
			if err := tx.Model(&models.InventoryItem{}).
				Where("farm_id = ? AND archived_at IS NULL", farm.ID).
				Count(&items).Error; err != nil {
				return err
			}
			if items > 0 {
				return fiber.NewError(fiber.StatusConflict, "farm still has inventory items")
			}
			if err := tx.Where("farm_id = ?", farm.ID).Delete(&models.Supplier{}).Error; err != nil {
				return err
			}
			if err := tx.Where("farm_id = ? AND role = ?", farm.ID, models.RoleFarmManager).Delete(&models.User{}).Error; err != nil {
				return err
			}
			return tx.Delete(farm).Error
		})
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/farms/:id/managers
func CreateFarmManagerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farm, err := findFarm(db, c)
		if err != nil {
			return err
		}

		var body CreateFarmManagerRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}
		body.Email = strings.ToLower(strings.TrimSpace(body.Email))

		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", body.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "email already registered")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := models.User{
			Name:         strings.TrimSpace(body.Name),
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleFarmManager,
			FarmID:       &farm.ID,
		}
		if err := db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(toManagerResponse(&user))
	}
}

// GET /api/admin/farms/:id/managers
func ListFarmManagersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farm, err := findFarm(db, c)
		if err != nil {
			return err
		}

		var users []models.User
		if err := db.WithContext(c.UserContext()).
			Where("farm_id = ? AND role = ?", farm.ID, models.RoleFarmManager).
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			return err
		}

		res := make([]FarmManagerResponse, 0, len(users))
		for i := range users {
			res = append(res, toManagerResponse(&users[i]))
		}
		return c.JSON(res)
	}
}

func toManagerResponse(u *models.User) FarmManagerResponse {
	return FarmManagerResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		FarmID:    u.FarmID,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
