package protocol

import (
	"encoding/json"
	"fmt"
)

// IntentType 客户端上行意图类型
type IntentType string

const (
	IntentJoinTable IntentType = "JOIN_TABLE"
	IntentReady     IntentType = "READY"
	IntentDiscard   IntentType = "DISCARD_INTENT"
	IntentClaim     IntentType = "CLAIM_INTENT"
	IntentDissolve  IntentType = "DISSOLVE_REQUEST"
	IntentPing      IntentType = "PING"
)

// ClaimType 协议层的鸣牌类型
type ClaimType string

const (
	ClaimChi  ClaimType = "CHI"
	ClaimPon  ClaimType = "PON"
	ClaimKan  ClaimType = "KAN"
	ClaimHu   ClaimType = "HU"
	ClaimPass ClaimType = "PASS"
)

// Intent 客户端意图
// ClientSeq 是玩家侧单调不减的序号，用于幂等重发；nil 表示客户端未携带
type Intent struct {
	Type      IntentType `json:"type"`
	Tile      string     `json:"tile,omitempty"`
	Claim     ClaimType  `json:"claim,omitempty"`
	Tiles     []string   `json:"tiles,omitempty"`
	ClientSeq *int64     `json:"clientSeq,omitempty"`
}

// ParseIntent 解析并校验上行意图
func ParseIntent(data []byte) (Intent, error) {
	var intent Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		return Intent{}, fmt.Errorf("意图解析失败: %w", err)
	}
	if err := ValidateIntent(intent); err != nil {
		return Intent{}, err
	}
	return intent, nil
}

// ValidateIntent 校验意图的必填字段
func ValidateIntent(intent Intent) error {
	switch intent.Type {
	case IntentJoinTable, IntentReady, IntentDissolve, IntentPing:
		return nil
	case IntentDiscard:
		if intent.Tile == "" {
			return fmt.Errorf("DISCARD_INTENT 缺少 tile")
		}
		return nil
	case IntentClaim:
		switch intent.Claim {
		case ClaimChi, ClaimPon, ClaimKan, ClaimHu, ClaimPass:
			return nil
		default:
			return fmt.Errorf("CLAIM_INTENT 非法 claim: %q", intent.Claim)
		}
	default:
		return fmt.Errorf("未知意图类型: %q", intent.Type)
	}
}
