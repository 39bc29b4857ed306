package models

import "time"

// Interaction is one stored question/answer exchange. ID and Timestamp are
// assigned by the store on insert.
type Interaction struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}
