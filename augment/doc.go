// 版权所有 2025 NpcFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 augment 实现对白增强客户端：把节点的原始台词连同玩家上一句
选择一起发给 OpenAI 兼容的文本生成端点，换回一句改写后的台词。

# 行为契约

  - 每次 GenerateReply 恰好发出一个请求，无重试、无退避、无缓存；
    失败时由调用方回退到原始台词
  - 凭证缺失在任何网络活动之前以 CONFIGURATION 失败
  - 网络错误、超时、非 2xx 状态码映射为 TRANSPORT
  - 响应无法解析或不含候选消息映射为 PROTOCOL
  - 成功时取第一个候选的文本，去掉首尾空白与一层包裹引号

# 线上形状

请求为 POST {base_url}/chat/completions，携带 Bearer 凭证头，
JSON 体包含 model / temperature / max_tokens 与 system + user
两条消息；响应取 choices[0].message.content。
*/
package augment
