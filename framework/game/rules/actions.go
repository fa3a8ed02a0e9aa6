// Package rules 是规则层的牌桌改写动作
// 引擎只做队列化与前置校验，真正的状态变更集中在这里，
// 并且必须在对应牌桌引擎的串行队列内被调用
package rules

import (
	"fmt"
	"time"

	"tai16/common/config"
	"tai16/common/log"
	"tai16/framework/game"
	"tai16/framework/game/engines/taiwan"
)

type Actions struct {
	store    *game.MemoryTableStore
	settings config.GameSettings
}

func NewActions(store *game.MemoryTableStore, settings config.GameSettings) *Actions {
	return &Actions{
		store:    store,
		settings: settings,
	}
}

// DiscardTile 出牌：暗牌移入牌河，必要时建立鸣牌仲裁
func (a *Actions) DiscardTile(tableID, playerID, tile string) error {
	table, ok := a.store.GetTable(tableID)
	if !ok {
		return fmt.Errorf("牌桌 %s 不存在", tableID)
	}
	seat, ok := table.SeatOf(playerID)
	if !ok {
		return fmt.Errorf("玩家 %s 不在牌桌 %s", playerID, tableID)
	}
	player := table.PlayerAt(seat)
	if player == nil || !removeTile(player, tile) {
		return fmt.Errorf("玩家 %s 暗牌中没有 %s", playerID, tile)
	}

	player.Discards = append(player.Discards, tile)
	table.TurnDiscarded = true

	options := a.collectClaimOptions(table, seat, tile)
	if len(options) == 0 {
		a.advanceTurn(table, seat)
		return nil
	}

	current := maxPriority(options)
	table.Phase = game.PhaseClaiming
	table.Claiming = &game.ClaimingState{
		DiscardTile:     tile,
		FromSeat:        seat,
		Options:         options,
		CurrentPriority: current,
		Pending:         pendingAt(options, current),
		DeadlineAtMs:    time.Now().UnixMilli() + int64(a.settings.DeadlineSeconds)*1000,
	}
	return nil
}

// HandleClaimRequest 处理吃/碰/杠/胡（旧词汇）
// 只接受当前优先档的请求，一档一档仲裁
func (a *Actions) HandleClaimRequest(tableID, playerID, legacyClaimType string, tiles []string) error {
	table, claiming, seat, err := a.claimContext(tableID, playerID)
	if err != nil {
		return err
	}

	if game.ClaimPriorityOf(legacyClaimType) != claiming.CurrentPriority {
		return fmt.Errorf("座位 %d 的 %s 不在当前优先档 %d", seat, legacyClaimType, claiming.CurrentPriority)
	}
	if !hasOption(claiming, seat, legacyClaimType) {
		return fmt.Errorf("座位 %d 没有 %s 的选择", seat, legacyClaimType)
	}

	claiming.Resolved = true
	claiming.ResolvedSeat = seat
	claiming.ResolvedClaim = legacyClaimType
	delete(claiming.Pending, seat)

	if legacyClaimType == game.LegacyClaimHu {
		table.Phase = game.PhaseEnded
		log.Info("桌 %s 座位 %d 食胡 %s", tableID, seat, claiming.DiscardTile)
		return nil
	}

	// 吃/碰/杠：夺走牌河最后一张，组成副露，轮到鸣牌者行动
	claimant := table.PlayerAt(seat)
	discarder := table.PlayerAt(claiming.FromSeat)
	if claimant == nil || discarder == nil {
		return fmt.Errorf("仲裁座位数据缺失")
	}
	for _, t := range tiles {
		if !removeTile(claimant, t) {
			return fmt.Errorf("座位 %d 暗牌中没有 %s", seat, t)
		}
	}
	if n := len(discarder.Discards); n > 0 && discarder.Discards[n-1] == claiming.DiscardTile {
		discarder.Discards = discarder.Discards[:n-1]
	}
	claimant.Melds = append(claimant.Melds, game.Meld{
		Kind:  legacyClaimType,
		Tiles: append(append([]string{}, tiles...), claiming.DiscardTile),
		From:  claiming.FromSeat,
	})

	table.Phase = game.PhasePlaying
	table.Turn = seat
	table.TurnDiscarded = false

	// 杠完要补一张
	if legacyClaimType == game.LegacyClaimKong {
		a.drawFromWallEnd(table, claimant)
	}
	return nil
}

// PassClaim 过：放弃本档全部响应权
// 本档清空后降到下一档；全部档位放弃则恢复行牌
func (a *Actions) PassClaim(tableID, playerID string) error {
	table, claiming, seat, err := a.claimContext(tableID, playerID)
	if err != nil {
		return err
	}

	delete(claiming.Pending, seat)
	kept := claiming.Options[:0]
	for _, opt := range claiming.Options {
		if opt.Seat != seat {
			kept = append(kept, opt)
		}
	}
	claiming.Options = kept

	if len(claiming.Pending) > 0 {
		return nil
	}

	if next := maxPriority(claiming.Options); next > 0 {
		claiming.CurrentPriority = next
		claiming.Pending = pendingAt(claiming.Options, next)
		claiming.DeadlineAtMs = time.Now().UnixMilli() + int64(a.settings.DeadlineSeconds)*1000
		return nil
	}

	claiming.Resolved = true
	claiming.ResolvedSeat = claiming.FromSeat
	claiming.ResolvedClaim = game.LegacyClaimPass
	a.advanceTurn(table, claiming.FromSeat)
	return nil
}

func (a *Actions) claimContext(tableID, playerID string) (*game.Table, *game.ClaimingState, int, error) {
	table, ok := a.store.GetTable(tableID)
	if !ok {
		return nil, nil, -1, fmt.Errorf("牌桌 %s 不存在", tableID)
	}
	if table.Claiming == nil {
		return nil, nil, -1, fmt.Errorf("牌桌 %s 不在仲裁中", tableID)
	}
	if table.Claiming.Resolved {
		return nil, nil, -1, fmt.Errorf("牌桌 %s 的仲裁已经结束", tableID)
	}
	seat, ok := table.SeatOf(playerID)
	if !ok {
		return nil, nil, -1, fmt.Errorf("玩家 %s 不在牌桌 %s", playerID, tableID)
	}
	return table, table.Claiming, seat, nil
}

// advanceTurn 无人鸣牌时轮转到下家并摸牌；牌墙摸空则流局
func (a *Actions) advanceTurn(table *game.Table, fromSeat int) {
	next := (fromSeat + 1) % 4
	table.Phase = game.PhasePlaying
	table.Turn = next
	table.TurnDiscarded = false
	table.Claiming = nil

	player := table.PlayerAt(next)
	if player == nil {
		return
	}
	if len(table.Wall) == 0 {
		table.Phase = game.PhaseEnded
		log.Info("桌 %s 牌墙摸空，流局", table.ID)
		return
	}
	player.Hand = append(player.Hand, table.Wall[0])
	table.Wall = table.Wall[1:]
}

// drawFromWallEnd 杠后从牌墙尾端补牌
func (a *Actions) drawFromWallEnd(table *game.Table, player *game.Player) {
	if len(table.Wall) == 0 {
		table.Phase = game.PhaseEnded
		return
	}
	last := len(table.Wall) - 1
	player.Hand = append(player.Hand, table.Wall[last])
	table.Wall = table.Wall[:last]
}

// collectClaimOptions 逐座位收集对这张弃牌的合法响应
func (a *Actions) collectClaimOptions(table *game.Table, fromSeat int, tile string) []game.ClaimOptionState {
	var options []game.ClaimOptionState
	for i := 0; i < 4; i++ {
		if i == fromSeat {
			continue
		}
		player := table.PlayerAt(i)
		if player == nil {
			continue
		}

		if a.canHu(player) {
			options = append(options, game.ClaimOptionState{
				Seat: i, Claim: game.LegacyClaimHu, Tiles: []string{tile}, Priority: game.PriorityHu,
			})
		}
		if countTile(player.Hand, tile) >= 3 {
			options = append(options, game.ClaimOptionState{
				Seat: i, Claim: game.LegacyClaimKong, Tiles: []string{tile, tile, tile}, Priority: game.PriorityPong,
			})
		}
		if countTile(player.Hand, tile) >= 2 {
			options = append(options, game.ClaimOptionState{
				Seat: i, Claim: game.LegacyClaimPong, Tiles: []string{tile, tile}, Priority: game.PriorityPong,
			})
		}
		// 吃只能是下家
		if (fromSeat+1)%4 == i {
			for _, combo := range chiCombos(player.Hand, tile) {
				options = append(options, game.ClaimOptionState{
					Seat: i, Claim: game.LegacyClaimChi, Tiles: combo, Priority: game.PriorityChi,
				})
			}
		}
	}
	return options
}

// canHu 食胡判定入口：听牌标记由听牌搜索在每次手牌变化后维护
func (a *Actions) canHu(player *game.Player) bool {
	return player.Waiting
}

// chiCombos 列出吃这张牌能用到的手内两张组合
func chiCombos(hand []string, tile string) [][]string {
	rank, suit, ok := taiwan.RankSuit(tile)
	if !ok {
		return nil
	}
	has := func(r int) bool {
		t := taiwan.NumberTile(r, suit)
		return t != "" && countTile(hand, t) > 0
	}
	var combos [][]string
	if has(rank - 2) && has(rank - 1) {
		combos = append(combos, []string{taiwan.NumberTile(rank-2, suit), taiwan.NumberTile(rank-1, suit)})
	}
	if has(rank - 1) && has(rank + 1) {
		combos = append(combos, []string{taiwan.NumberTile(rank-1, suit), taiwan.NumberTile(rank+1, suit)})
	}
	if has(rank + 1) && has(rank + 2) {
		combos = append(combos, []string{taiwan.NumberTile(rank+1, suit), taiwan.NumberTile(rank+2, suit)})
	}
	return combos
}

func countTile(hand []string, tile string) int {
	count := 0
	for _, t := range hand {
		if t == tile {
			count++
		}
	}
	return count
}

func removeTile(player *game.Player, tile string) bool {
	for i, t := range player.Hand {
		if t == tile {
			player.Hand = append(player.Hand[:i], player.Hand[i+1:]...)
			return true
		}
	}
	return false
}

func hasOption(claiming *game.ClaimingState, seat int, legacy string) bool {
	for _, opt := range claiming.Options {
		if opt.Seat == seat && opt.Claim == legacy {
			return true
		}
	}
	return false
}

func maxPriority(options []game.ClaimOptionState) int {
	max := 0
	for _, opt := range options {
		if opt.Priority > max {
			max = opt.Priority
		}
	}
	return max
}

func pendingAt(options []game.ClaimOptionState, priority int) map[int]bool {
	pending := make(map[int]bool)
	for _, opt := range options {
		if opt.Priority == priority {
			pending[opt.Seat] = true
		}
	}
	return pending
}
