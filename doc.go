// Package canteen 是食堂菜品混合推荐引擎。
//
// 设计要点：
//   - Pipeline-first：个性化路径由 Node 串联（目录召回 → 冷却/规则过滤 → VSM 相关度 → Top50 → MMR）
//   - 9 维口味向量：feature 包从名称、类目、标签、价格、热量抽取，索引按目录指纹缓存
//   - 显式时间：画像衰减、内容衰减、冷却窗口、时段调权都以调用方给定的 now 为准
//   - 策略独立：协同过滤、内容、热度各自输出 [0,1] 分数，不做融合
//
// 入口见 engine.Engine 与 cmd/canteen-rec。
package canteen
