/*
# 概述

Package retrieval 是检索增强问答服务的决策核心：给定一个查询，
在固定 Q&A 表、一个或多个向量知识库和实时联网搜索之间做出选择，
将三路信号融合为一个带引用的答案，并按置信度分档决定直接作答、
保守作答（附联网选项）还是放弃作答。

# 核心类型

  - Expander — 问题扩展器（简称替换 + 模板改写 + 关键词提取）
  - FixedQAMatcher — 固定 Q&A 检索（最佳同义问法相似度 + 关键词加成）
  - KBRetriever — 向量知识库检索（逐库权重/boost，最低相关门槛）
  - WebRetriever — 条件触发的联网搜索（策略模式 + 阈值）
  - FusionEngine — 七种融合策略的分发器
  - Engine — retrieve 统一入口，三路并发、失败隔离

# 数据流

查询 → 问题扩展 → {固定Q&A, 向量知识库} 并发检索 → 按策略模式
条件触发联网搜索 → 候选合并 → 融合策略 → 引用/建议构建 → 结构化结果。

任何检索源的失败都被降级为该源零候选并记录在检索路径中，
Retrieve 不向调用方抛错。
*/
package retrieval
