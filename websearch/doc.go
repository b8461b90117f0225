/*
# 概述

Package websearch 提供实时联网搜索的提供者接口、Tavily 实现
和搜索提供商的日用量计数。

搜索结果统一归一化为 relevance/title/url/content/published_date；
提供商可附带一条基于多源生成的 AI 综合答案。相关度低于 0.5 的
结果在归一化阶段即被丢弃。

UsageStore 是整个检索核心中唯一跨查询存活的状态：基于 Redis 的
日用量计数，按"检查重置日期 → 重置 → 自增"的顺序容忍竞争，
竞争丢失最多造成一次少计，不会损坏数据。
*/
package websearch
