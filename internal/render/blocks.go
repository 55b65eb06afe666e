package render

// Block is one typed unit of a rendered message, shaped like a Slack
// Block Kit block.
type Block struct {
	Type string `json:"type"`
	Text *Text  `json:"text,omitempty"`
}

type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Header builds a plain-text header block.
func Header(text string) Block {
	return Block{
		Type: "header",
		Text: &Text{Type: "plain_text", Text: text, Emoji: true},
	}
}

// Section builds a markdown section block.
func Section(markdown string) Block {
	return Block{
		Type: "section",
		Text: &Text{Type: "mrkdwn", Text: markdown},
	}
}
