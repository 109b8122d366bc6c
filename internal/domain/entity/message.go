package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	Role    MessageRole
	Content string
	Images  []ChartImage
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string, images ...ChartImage) Message {
	return Message{Role: RoleUser, Content: content, Images: images}
}

func (m Message) HasImages() bool {
	return len(m.Images) > 0
}
