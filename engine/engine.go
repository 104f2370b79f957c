package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/npcflow/types"
)

// nodeKey is the composite key disambiguating nodes with the same local id
// across different conversations.
type nodeKey struct {
	conversationID string
	nodeID         string
}

// Engine owns the conversation state machine: which conversation and which
// node inside it are active, and how player choices resolve into transitions.
// It indexes the content model eagerly and emits lifecycle events
// synchronously within the call that caused them.
//
// The engine is not safe for concurrent use. It is designed to be driven
// from a single control flow (the host's update loop, or a serializing
// facade such as service.Service). Event handlers run inside the triggering
// call; reentrant calls into the engine from a handler are disallowed.
type Engine struct {
	bus    *Bus
	logger *zap.Logger

	db            *types.Database
	conversations map[string]*types.Conversation
	nodes         map[nodeKey]*types.Node

	current     *types.Conversation
	currentNode *types.Node
}

// NewEngine creates an idle engine with no content loaded.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		bus:    NewBus(logger),
		logger: logger,
	}
}

// Events returns the engine's event bus.
func (e *Engine) Events() *Bus { return e.bus }

// LoadDatabase indexes db, replacing both lookup structures wholesale; a
// live index is never patched in place. Entries with a missing identifier
// are skipped silently; duplicate conversation identifiers resolve
// last-write-wins and are logged as a content-authoring hazard.
//
// Loading is a hard reset: any in-progress conversation is discarded
// without a ConversationEnded event. This is intentional — subscribers that
// pair start/end events must treat a reload as a teardown of everything.
func (e *Engine) LoadDatabase(db *types.Database) error {
	if db == nil {
		return types.NewError(types.ErrInvalidArgument, "database is nil")
	}

	conversations := make(map[string]*types.Conversation, len(db.Conversations))
	nodes := make(map[nodeKey]*types.Node)

	for i := range db.Conversations {
		conv := &db.Conversations[i]
		if conv.ID == "" {
			continue
		}
		if _, dup := conversations[conv.ID]; dup {
			e.logger.Warn("duplicate conversation id, last one wins",
				zap.String("conversation", conv.ID))
		}
		conversations[conv.ID] = conv
		for j := range conv.Nodes {
			node := &conv.Nodes[j]
			if node.ID == "" {
				continue
			}
			nodes[nodeKey{conv.ID, node.ID}] = node
		}
	}

	if e.current != nil {
		e.logger.Warn("database reload discarded active conversation without end event",
			zap.String("conversation", e.current.ID))
	}

	e.db = db
	e.conversations = conversations
	e.nodes = nodes
	e.current = nil
	e.currentNode = nil

	e.logger.Info("conversation database indexed",
		zap.Int("conversations", len(conversations)),
		zap.Int("nodes", len(nodes)))
	return nil
}

// TryStartConversation activates the conversation with the given id. An
// unknown id returns (false, nil): this is an expected outcome, not an
// error. On success it emits ConversationStarted and then transitions to
// the conversation's start node, which may itself immediately emit
// ConversationEnded if the start node does not resolve.
//
// Starting while another conversation is active replaces it without a
// ConversationEnded event, the same hard-reset rule LoadDatabase applies;
// hosts that need a matched pair should call EndConversation first.
func (e *Engine) TryStartConversation(id string) (bool, error) {
	if id == "" {
		return false, types.NewError(types.ErrInvalidArgument, "conversation id is empty")
	}

	conv, ok := e.conversations[id]
	if !ok {
		return false, nil
	}

	e.current = conv
	e.currentNode = nil
	e.bus.Publish(&ConversationStartedEvent{Conversation: conv, Timestamp_: time.Now()})
	e.GoToNode(conv.StartNodeID)
	return true, nil
}

// Choose resolves the current node's choice at index. It is a no-op when no
// conversation is active, the current node has no choices, or index is out
// of range — an extra click is an ordinary event, not an error.
// ChoiceSelected is emitted before the transition resolves, so observers
// see the selection in the context of the node it was made on.
func (e *Engine) Choose(index int) {
	if e.current == nil || e.currentNode == nil {
		return
	}
	choices := e.currentNode.Choices
	if index < 0 || index >= len(choices) {
		return
	}

	node := e.currentNode
	next := choices[index].NextNodeID
	e.bus.Publish(&ChoiceSelectedEvent{Node: node, ChoiceIndex: index, Timestamp_: time.Now()})

	if types.IsEndSentinel(next) {
		e.EndConversation()
		return
	}
	e.GoToNode(next)
}

// GoToNode is the transition primitive: it makes nodeID the current node
// and emits NodeEntered. An empty id, no active conversation, or a dangling
// reference all end the conversation instead — broken content degrades to a
// finished conversation, never a crash.
func (e *Engine) GoToNode(nodeID string) {
	if e.current == nil || nodeID == "" {
		e.EndConversation()
		return
	}

	node, ok := e.nodes[nodeKey{e.current.ID, nodeID}]
	if !ok {
		e.logger.Warn("dangling node reference, ending conversation",
			zap.String("conversation", e.current.ID),
			zap.String("node", nodeID))
		e.EndConversation()
		return
	}

	e.currentNode = node
	e.bus.Publish(&NodeEnteredEvent{Node: node, Timestamp_: time.Now()})
}

// EndConversation returns the engine to idle. A no-op when already idle.
// The emitted event carries the conversation that just ended, captured
// before state is cleared.
func (e *Engine) EndConversation() {
	if e.current == nil {
		return
	}
	ended := e.current
	e.current = nil
	e.currentNode = nil
	e.bus.Publish(&ConversationEndedEvent{Conversation: ended, Timestamp_: time.Now()})
}

// CurrentConversation returns the active conversation, or nil when idle.
func (e *Engine) CurrentConversation() *types.Conversation { return e.current }

// CurrentNode returns the active node, or nil.
func (e *Engine) CurrentNode() *types.Node { return e.currentNode }

// IsActive reports whether a conversation is in progress.
func (e *Engine) IsActive() bool { return e.current != nil }
