package game

// LegacyActions 规则层提供的牌桌改写动作
// 引擎完成前置校验后把真正的状态变更委托给这里；
// 这些调用对引擎而言是同步的，且只会在该桌的串行队列内发生
type LegacyActions interface {
	// DiscardTile 出牌：从暗牌移入牌河，必要时建立鸣牌仲裁状态
	DiscardTile(tableID, playerID, tile string) error

	// HandleClaimRequest 处理吃/碰/杠/胡请求（旧词汇）
	HandleClaimRequest(tableID, playerID, legacyClaimType string, tiles []string) error

	// PassClaim 过（放弃本档响应权）
	PassClaim(tableID, playerID string) error
}
