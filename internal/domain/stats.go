package domain

// TicketStats aggregates ticket counts by status. Derived, never
// authoritative: recomputed from the database on demand.
type TicketStats struct {
	Total       int64 `json:"total"`
	Open        int64 `json:"open"`
	InProgress  int64 `json:"in_progress"`
	WaitingUser int64 `json:"waiting_user"`
	Resolved    int64 `json:"resolved"`
	Closed      int64 `json:"closed"`
}

// NotificationStats aggregates a user's notification feed.
type NotificationStats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}
