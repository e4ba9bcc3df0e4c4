package v1

type CreateBroadcastResponse struct {
	BroadcastID     int64  `json:"broadcast_id"`
	TotalRecipients int    `json:"total_recipients"`
	Status          string `json:"status"`
}

type BroadcastActionResponse struct {
	BroadcastID int64  `json:"broadcast_id"`
	Status      string `json:"status"`
}

type ScheduleMessageResponse struct {
	ScheduledMessageID int64  `json:"scheduled_message_id"`
	Status             string `json:"status"`
}

type EnrollContactResponse struct {
	EnrollmentID int64  `json:"enrollment_id"`
	SequenceID   int64  `json:"sequence_id"`
	Status       string `json:"status"`
}
