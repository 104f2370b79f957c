package types

import "strings"

// Database is the root of a loaded conversation asset: an ordered sequence of
// Conversations. It is owned by whichever component loaded it and is treated
// as read-only for the lifetime of any engine built from it.
type Database struct {
	Conversations []Conversation `yaml:"conversations" json:"conversations"`
}

// Conversation is a named dialogue tree with one designated start node.
// The ID is the unique key once indexed; duplicates resolve last-write-wins.
type Conversation struct {
	ID          string `yaml:"id" json:"id"`
	StartNodeID string `yaml:"start_node_id" json:"start_node_id"`
	Nodes       []Node `yaml:"nodes" json:"nodes"`
}

// Node is one beat of dialogue: a speaker, body text, and zero or more
// choices. A node with no choices is terminal.
type Node struct {
	ID string `yaml:"id" json:"id"`
	// Speaker is free text. "NPC" is a convention, not an enforced type.
	Speaker string   `yaml:"speaker" json:"speaker"`
	Text    string   `yaml:"text" json:"text"`
	Choices []Choice `yaml:"choices,omitempty" json:"choices,omitempty"`
}

// Choice is a labeled transition from one node to another, or to
// conversation end.
type Choice struct {
	Text       string `yaml:"text" json:"text"`
	NextNodeID string `yaml:"next_node_id" json:"next_node_id"`
}

// EndSentinel is the literal next-node id that terminates a conversation
// instead of naming a node. The comparison is case-insensitive.
const EndSentinel = "end"

// IsEndSentinel reports whether a next-node id means "terminate the
// conversation" rather than "go to a node by that name". An empty id and the
// case-insensitive literal "end" are both sentinels.
func IsEndSentinel(nextNodeID string) bool {
	return nextNodeID == "" || strings.EqualFold(nextNodeID, EndSentinel)
}
