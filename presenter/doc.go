// 版权所有 2025 NpcFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 presenter 实现表现层状态机（协调器）。它不渲染任何控件，
只决定"用户此刻应该看到什么"。

# 状态

Hidden → NpcSpeaking → PlayerChoosing，外加横切的 Generating
忙标志：生成进行中时所有输入信号被忽略。

# 增强决策

玩家在上一节点做出选择、新节点的说话者匹配 NPC 约定、配置了
生成器、且当前没有请求在途时，协调器才发起一次增强请求并显示
占位文本。成功则以生成文本替换原始台词；任何失败记日志并回退
到原始台词。两条路径都必然释放忙标志。

# 并发纪律

协调器由单一控制流驱动；内部锁只保护跨协程共享的显示状态，
绝不跨引擎调用或网络调用持有（Select → Choose 会同步重入
NodeEntered 处理器）。生成结果回到协调器时重新校验
"请求时的节点是否仍在显示"——对话已结束或已切换节点的结果
直接丢弃，迟到的完成永远不会改写当前画面。
*/
package presenter
