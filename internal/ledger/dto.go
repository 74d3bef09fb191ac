package ledger

import "github.com/comicvault/comicvault-backend/pkg/db/models"

// EntryList wraps a paginated page of ledger entries plus the next cursor.
type EntryList struct {
	Entries    []models.LedgerEntry `json:"entries"`
	NextCursor string               `json:"next_cursor,omitempty"`
}
