package types

// MessageRole is the author of a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// String returns the string representation of the message role
func (r MessageRole) String() string {
	return string(r)
}

// IsValid checks if the message role is valid
func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}
