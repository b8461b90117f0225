/*
# 概述

Package types 定义混合检索决策核心共享的数据类型。

所有类型均为每次查询创建、随结果丢弃的值对象；跨查询存活的唯一状态
（搜索提供商日用量计数）由 websearch 包的 UsageStore 持有。

# 核心类型

  - Source — 封闭的候选来源枚举（FixedQA / KnowledgeBase / Web）
  - Candidate — 单条打分候选，含来源专属 payload
  - FusionResult — 融合策略输出（档位、置信度、引用、建议）
  - Citation — 编号引用（仿 OpenAI 格式，内部分数不对外展示）
  - RetrievalOutcome — retrieve 入口返回的完整结构化结果
  - SourceError — 带错误码的检索源错误，保留在检索路径中可观测
*/
package types
