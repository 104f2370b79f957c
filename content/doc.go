// 版权所有 2025 NpcFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 content 负责对话内容资产的加载：从 YAML 文件构建 types.Database，
以及可选的修改时间轮询热重载。加载只校验结构形状；悬空节点引用、
无法解析的起始节点等语义问题保持潜伏，到对话启动时由引擎优雅降级。
*/
package content
