// 版权所有 2025 NpcFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 engine 实现对话状态机与同步事件总线。

# 状态机

Engine 只有两个状态：空闲（无活动对话）与对话中（活动对话 +
可选的当前节点；无节点子状态仅在 TryStartConversation 内部、
起始节点解析前瞬时存在）。对话结束后回到空闲，引擎可无限复用。

# 索引

LoadDatabase 从 Database 整体重建 conversation-by-id 与
(conversationId, nodeId) 复合键两套索引，索引只会整体替换、
从不增量修补。重复的对话 id 后者覆盖前者并记 warn 日志；
重载同时硬复位进行中的对话且不发 ConversationEnded。

# 事件

四个生命周期事件：ConversationStarted / ConversationEnded /
NodeEntered / ChoiceSelected。事件在触发它的外部调用内同步、
按发射顺序送达所有订阅者；单次外部调用至多发生一次开始或结束
转移，外加至多一次 NodeEntered（起始节点解析）。处理器内
禁止回调引擎。

# 错误分层

缺失参数（空 id、nil Database）立即抛出 INVALID_ARGUMENT；
未知对话 id、越界选项等预期结果以布尔值或空操作表达；
悬空节点引用记日志并结束该对话，不向调用方抛出。
*/
package engine
