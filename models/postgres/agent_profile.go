package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'AgentProfile' accumulates one agent's lifetime record across matches.
 * Stats holds the free-form counters (wins per side, accurate scans, ...)
 * as jsonb so new counters never need a migration.
 */
type AgentProfile struct {
	Address     string         `gorm:"primaryKey;size:100;not null"`
	Name        string         `gorm:"size:100"`
	GamesPlayed int            `gorm:"default:0"`
	GamesWon    int            `gorm:"default:0"`
	Stats       datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	LastSeenAt  time.Time
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}
