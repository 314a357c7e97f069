package models

type Notification struct {
	ID         string `bson:"_id" json:"id"`
	UserID     string `bson:"userId" json:"user_id"`
	Type       string `bson:"type" json:"type"`
	ActionType string `bson:"actionType" json:"action_type"`
	TargetID   string `bson:"targetId,omitempty" json:"target_id,omitempty"`
	Title      string `bson:"title" json:"title"`
	Message    string `bson:"message,omitempty" json:"message,omitempty"`
	Read       bool   `bson:"read" json:"read"`
	CreatedAt  int64  `bson:"createdAt" json:"created_at"`
}
