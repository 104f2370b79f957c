package presenter

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/npcflow/engine"
	"github.com/BaSui01/npcflow/types"
)

// Mode is the coordinator's visible state.
type Mode string

const (
	ModeHidden         Mode = "hidden"
	ModeNpcSpeaking    Mode = "npc_speaking"
	ModePlayerChoosing Mode = "player_choosing"
)

// Generator produces a rewritten line from the player's last choice and a
// node's canonical line. augment.Client satisfies this.
type Generator interface {
	GenerateReply(ctx context.Context, priorChoiceText, canonicalLine string) (string, error)
}

// Driver is the conversation control surface player selections are
// forwarded to.
type Driver interface {
	Choose(index int)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(index int)

func (f DriverFunc) Choose(index int) { f(index) }

// Option is one selectable choice materialized for the player.
type Option struct {
	Index int
	Text  string
}

// Config configures a Coordinator.
type Config struct {
	// NPCSpeaker is the speaker label that qualifies a node for
	// augmentation. Compared case-insensitively.
	NPCSpeaker string `yaml:"npc_speaker" env:"NPC_SPEAKER"`
	// Placeholder is shown while a generation is in flight.
	Placeholder string `yaml:"placeholder" env:"PLACEHOLDER"`
	// GenerateTimeout bounds a single generation attempt. Zero means rely
	// on the generator's own timeout.
	GenerateTimeout time.Duration `yaml:"generate_timeout" env:"GENERATE_TIMEOUT"`
}

// Coordinator is the presentation state machine. It consumes engine events
// and raw input signals, decides when to request augmentation, guards
// against overlapping requests, and owns what the user currently sees.
//
// Engine events re-enter the coordinator synchronously inside Select, so
// the internal lock is never held across a Driver call or across the
// generation network call.
type Coordinator struct {
	cfg    Config
	gen    Generator // nil disables augmentation
	driver Driver
	logger *zap.Logger

	bus  *engine.Bus
	subs []string

	mu          sync.Mutex
	mode        Mode
	node        *types.Node
	displayText string
	options     []Option
	generating  bool
	lastChoice  string
	augmentNext bool
	reqSeq      uint64
}

// NewCoordinator creates a hidden coordinator. gen may be nil, in which
// case every node shows its canonical line.
func NewCoordinator(cfg Config, gen Generator, driver Driver, logger *zap.Logger) *Coordinator {
	if cfg.NPCSpeaker == "" {
		cfg.NPCSpeaker = "NPC"
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = "..."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		cfg:    cfg,
		gen:    gen,
		driver: driver,
		logger: logger,
		mode:   ModeHidden,
	}
}

// Attach subscribes the coordinator to an engine event bus. Call Detach on
// teardown; subscriptions do not outlive the coordinator silently.
func (c *Coordinator) Attach(bus *engine.Bus) {
	c.bus = bus
	c.subs = []string{
		bus.Subscribe(engine.EventConversationStarted, func(ev engine.Event) {
			c.onStarted(ev.(*engine.ConversationStartedEvent))
		}),
		bus.Subscribe(engine.EventNodeEntered, func(ev engine.Event) {
			c.onNodeEntered(ev.(*engine.NodeEnteredEvent))
		}),
		bus.Subscribe(engine.EventChoiceSelected, func(ev engine.Event) {
			c.onChoiceSelected(ev.(*engine.ChoiceSelectedEvent))
		}),
		bus.Subscribe(engine.EventConversationEnded, func(ev engine.Event) {
			c.onEnded(ev.(*engine.ConversationEndedEvent))
		}),
	}
}

// Detach removes all event subscriptions.
func (c *Coordinator) Detach() {
	if c.bus == nil {
		return
	}
	for _, id := range c.subs {
		c.bus.Unsubscribe(id)
	}
	c.subs = nil
}

func (c *Coordinator) onStarted(ev *engine.ConversationStartedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Initial panel, shown before any node arrives.
	c.mode = ModeNpcSpeaking
	c.node = nil
	c.displayText = ""
	c.options = nil
}

func (c *Coordinator) onNodeEntered(ev *engine.NodeEnteredEvent) {
	node := ev.Node

	c.mu.Lock()
	c.mode = ModeNpcSpeaking
	c.node = node
	c.options = nil
	c.displayText = node.Text

	// The "augment the next NPC node" flag is armed by Select and consumed
	// here exactly once, whether or not a request goes out.
	shouldGen := c.augmentNext &&
		c.gen != nil &&
		!c.generating &&
		strings.EqualFold(node.Speaker, c.cfg.NPCSpeaker)
	c.augmentNext = false

	var priorChoice string
	var seq uint64
	if shouldGen {
		c.generating = true
		c.displayText = c.cfg.Placeholder
		c.reqSeq++
		seq = c.reqSeq
		priorChoice = c.lastChoice
	}
	c.mu.Unlock()

	if !shouldGen {
		return
	}
	go c.generate(seq, node, priorChoice)
}

func (c *Coordinator) onChoiceSelected(ev *engine.ChoiceSelectedEvent) {
	c.logger.Debug("choice selected",
		zap.String("node", ev.Node.ID),
		zap.Int("index", ev.ChoiceIndex))
}

func (c *Coordinator) onEnded(ev *engine.ConversationEndedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// End always wins: clear everything, including generation flags, so a
	// completion arriving later is discarded rather than applied. Bumping
	// the sequence invalidates every outstanding request outright; without
	// it a restart that re-enters the same node would let a pre-end result
	// through the continuation's checks.
	c.mode = ModeHidden
	c.node = nil
	c.displayText = ""
	c.options = nil
	c.generating = false
	c.augmentNext = false
	c.lastChoice = ""
	c.reqSeq++
}

// generate runs off the control flow. Its continuation re-checks that the
// world it suspended in still exists before applying the result.
func (c *Coordinator) generate(seq uint64, node *types.Node, priorChoice string) {
	ctx := context.Background()
	if c.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.GenerateTimeout)
		defer cancel()
	}

	text, err := c.gen.GenerateReply(ctx, priorChoice, node.Text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq == c.reqSeq {
		// This request still owns the busy flag; release it on every
		// completion path so input handling cannot deadlock.
		c.generating = false
	}
	if c.node != node || c.mode == ModeHidden || seq != c.reqSeq {
		c.logger.Debug("discarding stale generation result",
			zap.String("node", node.ID))
		return
	}
	if err != nil {
		c.logger.Warn("generation failed, showing canonical line",
			zap.String("node", node.ID),
			zap.Error(err))
		c.displayText = node.Text
		return
	}
	c.displayText = text
}

// Advance handles the user's "advance" signal. In NpcSpeaking with at least
// one choice it materializes the options and moves to PlayerChoosing.
// Ignored while a generation is in flight.
func (c *Coordinator) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeNpcSpeaking || c.generating {
		return
	}
	if c.node == nil || len(c.node.Choices) == 0 {
		// Nothing to choose; the conversation ends via narrative content,
		// not via this signal.
		return
	}

	options := make([]Option, len(c.node.Choices))
	for i, choice := range c.node.Choices {
		options[i] = Option{Index: i, Text: choice.Text}
	}
	c.options = options
	c.mode = ModePlayerChoosing
}

// Select handles the user's "select option" signal. The augmentation flag
// is armed before the driver call: Choose emits NodeEntered synchronously
// and that handler is the flag's consumer.
func (c *Coordinator) Select(index int) {
	c.mu.Lock()
	if c.mode != ModePlayerChoosing || c.generating {
		c.mu.Unlock()
		return
	}
	if index < 0 || index >= len(c.options) {
		c.mu.Unlock()
		return
	}
	c.lastChoice = c.options[index].Text
	c.augmentNext = true
	c.mu.Unlock()

	c.driver.Choose(index)
}

// Mode returns the coordinator's visible state.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// DisplayText returns the line currently shown.
func (c *Coordinator) DisplayText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayText
}

// Options returns a copy of the materialized choices, empty outside
// PlayerChoosing.
func (c *Coordinator) Options() []Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Option, len(c.options))
	copy(out, c.options)
	return out
}

// Generating reports whether an augmentation request is in flight.
func (c *Coordinator) Generating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating
}

// Node returns the currently displayed node, or nil.
func (c *Coordinator) Node() *types.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.node
}
