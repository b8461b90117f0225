/*
# 概述

Package embedding 提供检索核心消费的嵌入提供者接口和实现。

本包只承载语义契约（文本 → 向量），提供商的认证、配额等
API 边界问题在提供者实现内处理，不会泄漏到检索核心。

# 核心接口/类型

  - Provider — 统一嵌入接口（Embed / EmbedBatch）
  - Config — 提供者配置（每次请求显式传入，无全局单例）
  - OpenAICompatProvider — OpenAI 兼容 REST 实现
  - CosineSimilarity — 余弦相似度工具函数
*/
package embedding
