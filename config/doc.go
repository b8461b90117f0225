/*
# 概述

Package config 提供检索决策核心的类型化配置。

配置优先级: 默认值 → 策略预设 → YAML 文件 → 环境变量 → 调用方覆盖。
所有阈值和开关都是显式字段，合并默认值是一个显式的步骤
（MergeWithDefaults），不存在运行时的嵌套 map 查找。

# 策略预设

  - safe_priority — 安全优先：高准确性，低置信度时由用户授权联网
  - realtime_knowledge — 实时知识：积极联网获取最新信息
*/
package config
