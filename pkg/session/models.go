package session

import (
	"github.com/pitabwire/frame/data"
)

// TurnRecord is the audit trail of one completed dialog turn.
type TurnRecord struct {
	data.BaseModel

	SessionID  string `gorm:"type:varchar(100);not null;index:idx_turn_session" json:"session_id"`
	UserID     string `gorm:"type:varchar(100);not null"                        json:"user_id"`
	IntentName string `gorm:"type:varchar(100);not null"                        json:"intent_name"`
	FromState  string `gorm:"type:varchar(40);not null"                         json:"from_state"`
	ToState    string `gorm:"type:varchar(40);not null"                         json:"to_state"`
	Utterance  string `gorm:"type:text"                                         json:"utterance"`
	LinkedCard bool   `gorm:"default:false"                                     json:"linked_card"`
}

func (TurnRecord) TableName() string { return "turn_records" }
