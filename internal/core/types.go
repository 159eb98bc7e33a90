package core

const (
	TuskName          = "TuskChat"
	TuskUserAgent     = "TuskChat/0.1"
	TuskRepositoryURL = "https://github.com/sandevgo/tuskchat"
	TuskVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Attachment is a single user supplied file sent along with one turn.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"-"`
}

type Message struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"-"`
}

// Citation is a grounding source returned by a generation provider.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
}
