package models

// HallOfFameSize is the number of showcase slots each user has.
const HallOfFameSize = 5

// HallOfFameSlot assigns a game to one of a user's showcase positions (1..HallOfFameSize).
// Empty slots have no row.
type HallOfFameSlot struct {
	UserID   uint `gorm:"primaryKey;uniqueIndex:idx_hof_user_game"`
	Position int  `gorm:"primaryKey"`
	GameID   uint `gorm:"not null;uniqueIndex:idx_hof_user_game"`

	Game Game `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
