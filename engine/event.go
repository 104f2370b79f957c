package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/npcflow/types"
)

// EventType 事件类型
type EventType string

const (
	EventConversationStarted EventType = "conversation_started"
	EventConversationEnded   EventType = "conversation_ended"
	EventNodeEntered         EventType = "node_entered"
	EventChoiceSelected      EventType = "choice_selected"
)

// EventAll 作为 Subscribe 的通配类型，匹配所有事件。
const EventAll EventType = ""

// subscriptionCounter 用于生成唯一订阅 ID，避免并发碰撞
var subscriptionCounter int64

// Event 事件接口
type Event interface {
	Timestamp() time.Time
	Type() EventType
}

// EventHandler 事件处理器
type EventHandler func(Event)

// Bus 是同步事件总线：Publish 在触发它的调用内按订阅顺序逐个执行
// 处理器，事件严格按发射顺序送达。处理器内不得回调引擎（重入未定义）。
type Bus struct {
	mu   sync.RWMutex
	subs []subscription

	logger *zap.Logger
}

type subscription struct {
	id      string
	event   EventType // EventAll 匹配所有类型
	handler EventHandler
}

// NewBus 创建同步事件总线
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe 订阅指定类型的事件；eventType 为 EventAll 时订阅全部。
// 返回的订阅 ID 用于 Unsubscribe。
func (b *Bus) Subscribe(eventType EventType, handler EventHandler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := fmt.Sprintf("%s-%d", eventType, atomic.AddInt64(&subscriptionCounter, 1))
	b.subs = append(b.subs, subscription{id: id, event: eventType, handler: handler})
	return id
}

// Unsubscribe 取消订阅
func (b *Bus) Unsubscribe(subscriptionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == subscriptionID {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish 同步派发事件。处理器 panic 被捕获并记录，不会中断
// 同一事件的后续处理器，也不会破坏引擎状态。
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.event == EventAll || s.event == event.Type() {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(handler, event)
	}
}

func (b *Bus) dispatch(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event", string(event.Type())),
				zap.Any("recover", r))
		}
	}()
	handler(event)
}

// ConversationStartedEvent 对话开始事件
type ConversationStartedEvent struct {
	Conversation *types.Conversation
	Timestamp_   time.Time
}

func (e *ConversationStartedEvent) Timestamp() time.Time { return e.Timestamp_ }
func (e *ConversationStartedEvent) Type() EventType      { return EventConversationStarted }

// ConversationEndedEvent 对话结束事件。Conversation 为刚刚结束的对话，
// 引擎已先行清空自身状态再发射本事件。
type ConversationEndedEvent struct {
	Conversation *types.Conversation
	Timestamp_   time.Time
}

func (e *ConversationEndedEvent) Timestamp() time.Time { return e.Timestamp_ }
func (e *ConversationEndedEvent) Type() EventType      { return EventConversationEnded }

// NodeEnteredEvent 进入节点事件
type NodeEnteredEvent struct {
	Node       *types.Node
	Timestamp_ time.Time
}

func (e *NodeEnteredEvent) Timestamp() time.Time { return e.Timestamp_ }
func (e *NodeEnteredEvent) Type() EventType      { return EventNodeEntered }

// ChoiceSelectedEvent 选项选中事件。Node 是做出选择时的节点，
// 事件先于转移发射，观察者看到的是选择发生时的上下文。
type ChoiceSelectedEvent struct {
	Node        *types.Node
	ChoiceIndex int
	Timestamp_  time.Time
}

func (e *ChoiceSelectedEvent) Timestamp() time.Time { return e.Timestamp_ }
func (e *ChoiceSelectedEvent) Type() EventType      { return EventChoiceSelected }
