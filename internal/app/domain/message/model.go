package message

// MaxTextLength is the longest accepted message_text, in characters.
const MaxTextLength = 254

// Message is a single post attributed to an account. ID is zero until the store
// assigns one on insert.
type Message struct {
	ID              int    `json:"message_id" db:"message_id"`
	PostedBy        int    `json:"posted_by" db:"posted_by"`
	Text            string `json:"message_text" db:"message_text" validate:"required,max=254"`
	TimePostedEpoch int64  `json:"time_posted_epoch" db:"time_posted_epoch"`
}
