// 版权所有 2025 NpcFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 config 提供统一配置：默认值 → YAML 文件 → 环境变量三级覆盖，
加上结构化验证。环境变量前缀默认 NPCFLOW，按 env tag 逐层拼接，
例如 NPCFLOW_AUGMENT_API_KEY 覆盖 Augment.APIKey。
*/
package config
