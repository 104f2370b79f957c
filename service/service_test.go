package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/npcflow/engine"
	"github.com/BaSui01/npcflow/types"
)

func testDB() *types.Database {
	return &types.Database{
		Conversations: []types.Conversation{
			{
				ID:          "npc_intro",
				StartNodeID: "start",
				Nodes: []types.Node{
					{ID: "start", Speaker: "NPC", Text: "Hello, traveler.", Choices: []types.Choice{
						{Text: "Goodbye.", NextNodeID: "end"},
					}},
				},
			},
		},
	}
}

func TestService_SentinelsBeforeReload(t *testing.T) {
	svc := NewService(nil)

	ok, err := svc.Start("npc_intro")
	require.NoError(t, err)
	assert.False(t, ok, "no engine yet: sentinel false, not a failure")

	// Pure no-ops, no panic.
	svc.Choose(0)
	svc.End()
	assert.False(t, svc.IsActive())
	assert.Nil(t, svc.CurrentConversation())
	assert.Nil(t, svc.CurrentNode())
}

func TestService_ReloadRejectsNilDatabase(t *testing.T) {
	svc := NewService(nil)
	err := svc.Reload(nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidArgument, types.GetErrorCode(err))
}

func TestService_DelegatesToEngine(t *testing.T) {
	svc := NewService(nil)
	require.NoError(t, svc.Reload(testDB()))

	ok, err := svc.Start("npc_intro")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, svc.IsActive())
	assert.Equal(t, "start", svc.CurrentNode().ID)

	svc.Choose(0)
	assert.False(t, svc.IsActive())
}

func TestService_ForwardsEventsVerbatimInOrder(t *testing.T) {
	svc := NewService(nil)
	require.NoError(t, svc.Reload(testDB()))

	var forwarded []engine.Event
	svc.Events().Subscribe(engine.EventAll, func(ev engine.Event) {
		forwarded = append(forwarded, ev)
	})

	ok, err := svc.Start("npc_intro")
	require.NoError(t, err)
	require.True(t, ok)
	svc.Choose(0)

	require.Len(t, forwarded, 4)
	assert.Equal(t, engine.EventConversationStarted, forwarded[0].Type())
	assert.Equal(t, engine.EventNodeEntered, forwarded[1].Type())
	assert.Equal(t, engine.EventChoiceSelected, forwarded[2].Type())
	assert.Equal(t, engine.EventConversationEnded, forwarded[3].Type())

	// Verbatim forwarding: same event values, not copies.
	started := forwarded[0].(*engine.ConversationStartedEvent)
	ended := forwarded[3].(*engine.ConversationEndedEvent)
	assert.Same(t, started.Conversation, ended.Conversation)
	assert.Equal(t, "npc_intro", started.Conversation.ID)
}

func TestService_ReloadDiscardsActiveConversation(t *testing.T) {
	svc := NewService(nil)
	require.NoError(t, svc.Reload(testDB()))

	var endedEvents int
	svc.Events().Subscribe(engine.EventConversationEnded, func(engine.Event) { endedEvents++ })

	ok, err := svc.Start("npc_intro")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Reload(testDB()))

	assert.False(t, svc.IsActive())
	assert.Zero(t, endedEvents, "reload is a hard reset: no end event for subscribers")

	// The fresh engine is fully usable.
	ok, err = svc.Start("npc_intro")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_CloseStopsForwarding(t *testing.T) {
	svc := NewService(nil)
	require.NoError(t, svc.Reload(testDB()))

	var forwarded int
	svc.Events().Subscribe(engine.EventAll, func(engine.Event) { forwarded++ })

	svc.Close()

	ok, err := svc.Start("npc_intro")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, forwarded)
}
