package request

// JoinRequest is the request body for joining the game
type JoinRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RecoveryPair is one recovery question and its answer
type RecoveryPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CreateAccountRequest is the request body for creating an account and joining
type CreateAccountRequest struct {
	Name     string         `json:"name"`
	Password string         `json:"password"`
	Recovery []RecoveryPair `json:"recovery,omitempty"`
}

// SayRequest is the request body for speaking in a room
type SayRequest struct {
	Message string `json:"message"`
}

// MoveRequest is the request body for walking
type MoveRequest struct {
	Distance int `json:"distance"`
}

// PickupRequest is the request body for picking up an object
type PickupRequest struct {
	Target string `json:"target"`
}

// FriendRequest is the request body for adding a friend
type FriendRequest struct {
	Friend string `json:"friend"`
}

// PasswordRequest is the request body for verifying or resetting a password
type PasswordRequest struct {
	Password string `json:"password"`
}

// WhiteboardRequest is the request body for writing on a whiteboard
type WhiteboardRequest struct {
	Text string `json:"text"`
}
