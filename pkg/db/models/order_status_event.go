package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/pkg/enums"
)

// OrderStatusEvent is one row of an order's append-only audit timeline.
// Backfilled rows carry the same shape as live ones, flagged via Backfilled so
// timeline consumers never need to special-case synthesized history.
type OrderStatusEvent struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	ActorUserID *uuid.UUID           `gorm:"column:actor_user_id;type:uuid"`
	ActorRole   enums.ActorRole      `gorm:"column:actor_role;type:actor_role;not null"`
	EventType   enums.OrderEventType `gorm:"column:event_type;type:order_event_type;not null"`
	Note        string               `gorm:"column:note"`
	Backfilled  bool                 `gorm:"column:backfilled;not null;default:false"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
