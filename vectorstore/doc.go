/*
# 概述

Package vectorstore 提供向量索引的统一查询接口。

检索核心只消费查询语义（collection + 查询向量 → 最近邻文档及距离），
集合管理、文档写入等 CRUD 在外围系统完成。提供两个实现：

  - MemoryIndex — 内存实现，用于测试和小规模场景
  - QdrantIndex — Qdrant REST API 实现
*/
package vectorstore
