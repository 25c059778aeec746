package models

import "time"

const (
	SpeakerUser = "user"
	SpeakerBot  = "bot"
)

// Message is one line of the chat transcript.
type Message struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}
