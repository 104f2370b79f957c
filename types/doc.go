// 版权所有 2025 NpcFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 types 定义跨包共享的基础类型：对话内容模型与统一错误码。

# 内容模型

Database → Conversation → Node → Choice 构成一棵只读的对话树。
内容由外部加载器构建后交给引擎索引，进程生命周期内不可变；
引擎只持有当前 Conversation / Node 的引用，从不复制。

  - Conversation：带有起始节点的命名对话树
  - Node：一句对白（说话者、正文、零个或多个选项），无选项即终结节点
  - Choice：指向下一节点的带文本转移，空 id 或不区分大小写的
    字面量 "end" 表示结束对话（见 IsEndSentinel）

# 错误码

Error 提供带 Code / HTTPStatus / Retryable / Cause 的结构化错误，
支持 errors.Unwrap。错误分类遵循四档处理策略：调用方误用立即抛出
（INVALID_ARGUMENT）；外部服务失败只抛给直接调用方（CONFIGURATION /
TRANSPORT / PROTOCOL）；内容完整性问题记录日志并优雅降级（CONTENT）；
预期的否定结果（未知对话 id、越界选项）以布尔值或空操作表达，永不抛出。
*/
package types
