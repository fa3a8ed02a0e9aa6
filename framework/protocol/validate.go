package protocol

import "fmt"

// ValidateOutbound 下行事件出站前的最后一道校验
// 失败说明核心内部构造错误，由队列层记录并丢弃该次发送
func ValidateOutbound(ev Event) error {
	switch ev.Type {
	case EventWelcome, EventPong:
		// 不占用 serverSeq
		if ev.ServerSeq != 0 {
			return fmt.Errorf("%s 不应携带 serverSeq", ev.Type)
		}
		return nil
	case EventTableSnapshot:
		if ev.Snapshot == nil {
			return fmt.Errorf("TABLE_SNAPSHOT 缺少 snapshot")
		}
	case EventTurnStart:
		if ev.Seat == nil {
			return fmt.Errorf("TURN_START 缺少 seat")
		}
	case EventDiscarded:
		if ev.Seat == nil {
			return fmt.Errorf("DISCARDED 缺少 seat")
		}
		if ev.Tile == "" {
			return fmt.Errorf("DISCARDED 缺少 tile")
		}
	case EventClaimWindow:
		if len(ev.OptionsForMe) == 0 {
			return fmt.Errorf("CLAIM_WINDOW 缺少 optionsForMe")
		}
	case EventClaimResolved:
		if ev.Seat == nil {
			return fmt.Errorf("CLAIM_RESOLVED 缺少 seat")
		}
		if ev.Claim == "" {
			return fmt.Errorf("CLAIM_RESOLVED 缺少 claim")
		}
	case EventHandSync:
		// 手牌可能为空（流局清算后），无必填项
	case EventScoreSettled:
		if ev.Settlement == nil {
			return fmt.Errorf("SCORE_SETTLED 缺少 settlement")
		}
	case EventTableDissolve:
		// 无必填项
	case EventRejected:
		if ev.Code == "" {
			return fmt.Errorf("REJECTED 缺少 code")
		}
	default:
		return fmt.Errorf("未知事件类型: %q", ev.Type)
	}

	if ev.ServerSeq <= 0 {
		return fmt.Errorf("%s 缺少 serverSeq", ev.Type)
	}
	return nil
}
