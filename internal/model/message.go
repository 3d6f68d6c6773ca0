package model

// MaxMessageLength is the longest message_text accepted, in characters.
const MaxMessageLength = 254

// Message represents a row in the `message` table. PostedBy references
// account.account_id and TimePostedEpoch is supplied by the caller.
type Message struct {
	ID              int64  `json:"message_id"`        // message.message_id
	PostedBy        int64  `json:"posted_by"`         // message.posted_by
	MessageText     string `json:"message_text"`      // message.message_text
	TimePostedEpoch int64  `json:"time_posted_epoch"` // message.time_posted_epoch
}
