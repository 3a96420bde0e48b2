package handler

import (
	"fmt"
	"net/http"

	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// HallOfFameEntry places a game at a 1-based showcase position.
type HallOfFameEntry struct {
	ID       uint `json:"id" binding:"required,min=1"`
	Position int  `json:"position" binding:"required,min=1,max=5"`
}

// HallOfFameInput lists the occupied slots only; positions not mentioned become empty.
type HallOfFameInput struct {
	Games []HallOfFameEntry `json:"games" binding:"max=5,dive"`
}

// HallOfFameResponse is the stored showcase, one entry per position, null when empty.
type HallOfFameResponse struct {
	Slots []*GameResponse `json:"slots"`
}

// HallOfFameUpdateResponse answers a replacement with the stored showcase.
type HallOfFameUpdateResponse struct {
	Success          bool            `json:"success"`
	UpdatedFavorites []*GameResponse `json:"updatedFavorites"`
}

// endregion

func loadHallOfFame(db *gorm.DB, userID uint) ([]*GameResponse, error) {
	var slots []models.HallOfFameSlot
	if err := db.Preload("Game").Where("user_id = ?", userID).Find(&slots).Error; err != nil {
		return nil, err
	}

	out := make([]*GameResponse, models.HallOfFameSize)
	for _, slot := range slots {
		if slot.Position < 1 || slot.Position > models.HallOfFameSize || slot.Game.ID == 0 {
			continue
		}
		game := newGameResponse(slot.Game)
		out[slot.Position-1] = &game
	}
	return out, nil
}

// validateHallOfFame reports repeated positions or games as field errors.
func validateHallOfFame(entries []HallOfFameEntry) map[string]string {
	fields := map[string]string{}
	positions := map[int]bool{}
	games := map[uint]bool{}
	for i, e := range entries {
		if positions[e.Position] {
			fields[fmt.Sprintf("games[%d].position", i)] = fmt.Sprintf("position %d is used twice", e.Position)
		}
		if games[e.ID] {
			fields[fmt.Sprintf("games[%d].id", i)] = "game is already in your Hall of Fame"
		}
		positions[e.Position] = true
		games[e.ID] = true
	}
	return fields
}

// GetHallOfFame godoc
// @Summary      Get a user's Hall of Fame
// @Tags         hall-of-fame
// @Produce      json
// @Param        name path string true "User name"
// @Success      200 {object} HallOfFameResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{name}/hall-of-fame [get]
func GetHallOfFame(c *gin.Context) {
	user, ok := namedUser(c)
	if !ok {
		return
	}

	slots, err := loadHallOfFame(database.DB, user.ID)
	if err != nil {
		internalError(c, "Failed to load Hall of Fame", err)
		return
	}
	c.JSON(http.StatusOK, HallOfFameResponse{Slots: slots})
}

// UpdateHallOfFame godoc
// @Summary      Replace the caller's Hall of Fame
// @Description  Stores the given positions atomically. Entries for games that do not exist are dropped and the stored result is returned.
// @Tags         hall-of-fame
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path string          true "User name (must be the caller)"
// @Param        input body HallOfFameInput true "Occupied slots"
// @Success      200 {object} HallOfFameUpdateResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ValidationErrorResponse
// @Router       /users/{name}/hall-of-fame [put]
func UpdateHallOfFame(c *gin.Context) {
	user, ok := ownedUser(c)
	if !ok {
		return
	}

	var input HallOfFameInput
	if !bindJSON(c, &input) {
		return
	}
	if fields := validateHallOfFame(input.Games); len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Error: "Validation failed", Fields: fields})
		return
	}

	var updated []*GameResponse
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(input.Games))
		for _, e := range input.Games {
			ids = append(ids, e.ID)
		}
		known := map[uint]bool{}
		if len(ids) > 0 {
			var existing []uint
			if err := tx.Model(&models.Game{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
				return err
			}
			for _, id := range existing {
				known[id] = true
			}
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.HallOfFameSlot{}).Error; err != nil {
			return err
		}
		for _, e := range input.Games {
			if !known[e.ID] {
				continue
			}
			slot := models.HallOfFameSlot{UserID: user.ID, Position: e.Position, GameID: e.ID}
			if err := tx.Create(&slot).Error; err != nil {
				return err
			}
		}

		var err error
		updated, err = loadHallOfFame(tx, user.ID)
		return err
	})
	if err != nil {
		internalError(c, "Failed to update Hall of Fame", err)
		return
	}

	c.JSON(http.StatusOK, HallOfFameUpdateResponse{Success: true, UpdatedFavorites: updated})
}
