package npcflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/npcflow/config"
	"github.com/BaSui01/npcflow/presenter"
	"github.com/BaSui01/npcflow/types"
)

func TestNew_AssemblesWorkingStack(t *testing.T) {
	db := &types.Database{
		Conversations: []types.Conversation{
			{ID: "npc_intro", StartNodeID: "start", Nodes: []types.Node{
				{ID: "start", Speaker: "NPC", Text: "Hello.", Choices: []types.Choice{
					{Text: "Bye.", NextNodeID: "end"},
				}},
			}},
		},
	}

	rt, err := New(config.DefaultConfig(), db, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Client, "augmentation disabled by default")

	ok, err := rt.Service.Start("npc_intro")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, presenter.ModeNpcSpeaking, rt.Coordinator.Mode())
	assert.Equal(t, "Hello.", rt.Coordinator.DisplayText())

	rt.Coordinator.Advance()
	rt.Coordinator.Select(0)

	assert.False(t, rt.Service.IsActive())
	assert.Equal(t, presenter.ModeHidden, rt.Coordinator.Mode())
}

func TestNew_NilDatabase(t *testing.T) {
	_, err := New(config.DefaultConfig(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidArgument, types.GetErrorCode(err))
}

func TestNew_EnabledAugmentBuildsClient(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Augment.Enabled = true
	cfg.Augment.APIKey = "k"

	db := &types.Database{}
	rt, err := New(cfg, db, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Client)
}
