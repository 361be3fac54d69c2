package model

import "time"

// Exception is a failure from a background path (balance sync, cache writes)
// persisted for later inspection, since the caller never sees it.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Service string `gorm:"size:100;index" json:"service"` // e.g. "journal_service"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "balance_syncer"
	Method  string `gorm:"size:100" json:"method"`        // e.g. "Sync"

	Message string `gorm:"type:text" json:"message"`
	Stack   string `gorm:"type:text" json:"stack"`

	Level string `gorm:"size:20;index" json:"level"` // debug | info | warn | error | fatal

	// JSON encoded, optional
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
