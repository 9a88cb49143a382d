package request

type FriendRequest struct {
	FriendID string `json:"friend_id" validate:"required,uuid4"`
}

type RespondFriendRequest struct {
	RequestID string `json:"request_id" validate:"required,uuid4"`
	Accept    bool   `json:"accept"`
}
