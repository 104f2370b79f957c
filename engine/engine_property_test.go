package engine

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/BaSui01/npcflow/types"
)

// genDatabase draws small databases whose next-node ids mix real nodes,
// end sentinels, and dangling references.
func genDatabase(t *rapid.T) *types.Database {
	convCount := rapid.IntRange(1, 4).Draw(t, "conversations")
	db := &types.Database{}

	for c := 0; c < convCount; c++ {
		nodeCount := rapid.IntRange(0, 5).Draw(t, fmt.Sprintf("nodes_%d", c))
		nodeIDs := make([]string, nodeCount)
		for n := range nodeIDs {
			nodeIDs[n] = fmt.Sprintf("node_%d", n)
		}

		targets := append([]string{"", "end", "END", "dangling"}, nodeIDs...)

		conv := types.Conversation{
			ID:          fmt.Sprintf("conv_%d", c),
			StartNodeID: rapid.SampledFrom(append([]string{"dangling", ""}, nodeIDs...)).Draw(t, fmt.Sprintf("start_%d", c)),
		}
		for n := 0; n < nodeCount; n++ {
			choiceCount := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("choices_%d_%d", c, n))
			node := types.Node{
				ID:      nodeIDs[n],
				Speaker: rapid.SampledFrom([]string{"NPC", "Player", "Narrator"}).Draw(t, fmt.Sprintf("speaker_%d_%d", c, n)),
				Text:    fmt.Sprintf("line %d/%d", c, n),
			}
			for k := 0; k < choiceCount; k++ {
				node.Choices = append(node.Choices, types.Choice{
					Text:       fmt.Sprintf("choice %d", k),
					NextNodeID: rapid.SampledFrom(targets).Draw(t, fmt.Sprintf("next_%d_%d_%d", c, n, k)),
				})
			}
			conv.Nodes = append(conv.Nodes, node)
		}
		db.Conversations = append(db.Conversations, conv)
	}
	return db
}

// For any database and any operation sequence, the engine never exposes a
// half-open state and its start/end events stay balanced.
func TestEngine_StateMachineInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db := genDatabase(t)
		eng := NewEngine(nil)
		if err := eng.LoadDatabase(db); err != nil {
			t.Fatalf("load: %v", err)
		}

		started, ended := 0, 0
		eng.Events().Subscribe(EventConversationStarted, func(Event) { started++ })
		eng.Events().Subscribe(EventConversationEnded, func(Event) { ended++ })

		checkInvariants := func() {
			if eng.IsActive() {
				if eng.CurrentConversation() == nil || eng.CurrentNode() == nil {
					t.Fatalf("active engine with missing conversation or node")
				}
			} else {
				if eng.CurrentConversation() != nil || eng.CurrentNode() != nil {
					t.Fatalf("idle engine still holds references")
				}
			}
			want := 0
			if eng.IsActive() {
				want = 1
			}
			if started-ended != want {
				t.Fatalf("start/end imbalance: started=%d ended=%d active=%v", started, ended, eng.IsActive())
			}
		}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("op_%d", i)) {
			case 0:
				// Starting over an active conversation replaces it without
				// an end event; drive starts from idle so the start/end
				// balance stays checkable.
				if eng.IsActive() {
					eng.EndConversation()
					checkInvariants()
				}
				id := rapid.SampledFrom([]string{"conv_0", "conv_1", "conv_2", "conv_3", "unknown"}).Draw(t, fmt.Sprintf("id_%d", i))
				if _, err := eng.TryStartConversation(id); err != nil {
					t.Fatalf("start: %v", err)
				}
			case 1:
				eng.Choose(rapid.IntRange(-1, 4).Draw(t, fmt.Sprintf("index_%d", i)))
			case 2:
				eng.EndConversation()
			}
			checkInvariants()
		}
	})
}
