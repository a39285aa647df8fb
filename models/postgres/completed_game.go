package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'CompletedGame' is the durable record of a finished match: the full roster,
 * transcript, per-round vote history, investigation log and the commit-reveal
 * material needed to audit role assignment after the fact.
 */
type CompletedGame struct {
	ID     string `gorm:"primaryKey;size:64;not null"`
	Result string `gorm:"size:20;not null;index:idx_completed_games_result"`
	Rounds int    `gorm:"default:0"`
	Stakes string `gorm:"size:100"`

	Players        datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Messages       datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	VoteHistory    datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Investigations datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Eliminations   datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Reveals        datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	ChainOptions   datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	StartedAt time.Time
	EndedAt   time.Time `gorm:"index:idx_completed_games_ended"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}
