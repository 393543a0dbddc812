package models

import "time"

// RequestLog is the immutable audit record of one HTTP request/response pair.
type RequestLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Method          string    `gorm:"size:10;not null" json:"method"`
	Path            string    `gorm:"type:text;not null" json:"path"`
	QueryString     string    `gorm:"type:text" json:"query_string"`
	RemoteIP        string    `gorm:"size:64" json:"remote_ip"`
	UserAgent       string    `gorm:"type:text" json:"user_agent"`
	ResponseStatus  int       `gorm:"not null" json:"response_status"`
	ResponseTime    float64   `gorm:"not null;default:0" json:"response_time"`
	Timestamp       time.Time `gorm:"index;not null" json:"timestamp"`
	UserID          *uint     `gorm:"index" json:"user_id"`
	User            *User     `gorm:"constraint:OnDelete:SET NULL;" json:"-"`
	IsAuthenticated bool      `gorm:"not null;default:false" json:"is_authenticated"`
}

func (RequestLog) TableName() string {
	return "request_logs"
}
