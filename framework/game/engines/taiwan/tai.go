package taiwan

// 台数计算：对和牌的一方，按固定顺序累加各台型的台数
// 本文件是纯函数，不读写任何共享状态，相同输入恒产生相同输出

// HuType 和牌方式
type HuType string

const (
	HuZiMo    HuType = "zimo"    // 自摸
	HuDiscard HuType = "discard" // 食胡（别家放枪）
)

// 封顶策略
const (
	CapUpTo4   = "UP_TO_4_POINTS"
	CapUpTo8   = "UP_TO_8_POINTS"
	CapNoLimit = "NO_LIMIT"
	CapUnlimit = "UNLIMITED"
)

const patternKeyDealer = "dealer"

// Meld 副露
type Meld struct {
	Kind  string // chi / pong / kong
	Tiles []string
	From  int
}

// WinFlags 由规则层预先判定好的台型旗标
// 台数计算只消费这些布尔值，不重复实现判型算法
type WinFlags struct {
	PingHu          bool // 平胡
	PongPongHu      bool // 碰碰胡
	BanQiuRen       bool // 半求人
	QuanQiuRen      bool // 全求人
	DuTing          bool // 独听
	SanAnKe         bool // 三暗刻
	SiAnKe          bool // 四暗刻
	WuAnKe          bool // 五暗刻
	HunYiSe         bool // 混一色
	QingYiSe        bool // 清一色
	XiaoSanYuan     bool // 小三元
	DaSanYuan       bool // 大三元
	XiaoSiXi        bool // 小四喜
	DaSiXi          bool // 大四喜
	ZiYiSe          bool // 字一色
	HaiDiLaoYue     bool // 海底捞月
	HeDiLaoYu       bool // 河底捞鱼
	GangShangKaiHua bool // 杠上开花
	QiangGangHu     bool // 抢杠胡
	TianHu          bool // 天胡
	DiHu            bool // 地胡
	BaXianGuoHai    bool // 八仙过海
	HuaGang         bool // 花杠
}

// TableState 计算台数所需的牌桌视图
type TableState struct {
	DealerIndex int
	WindStart   int    // 本圈起始风（0=东）
	CapPolicy   string // 封顶策略
}

// PlayerState 计算台数所需的玩家视图
type PlayerState struct {
	Hand    []string
	Melds   []Meld
	Flowers []string
	Flags   WinFlags
}

// TaiResult 台数结果
// OriginalTai 为封顶前，TotalTai 为封顶后；Patterns 是稳定内部键，PatternNames 是展示名
type TaiResult struct {
	TotalTai     int      `json:"totalTai"`
	OriginalTai  int      `json:"originalTai"`
	Patterns     []string `json:"patterns"`
	PatternNames []string `json:"patternNames"`
}

// flagPattern 旗标驱动的台型表（按判定顺序）
type flagPattern struct {
	hit  func(WinFlags) bool
	key  string
	name string
	tai  int
}

var flagPatterns = []flagPattern{
	{func(f WinFlags) bool { return f.PingHu }, "ping_hu", "平胡", 2},
	{func(f WinFlags) bool { return f.PongPongHu }, "pong_pong_hu", "碰碰胡", 4},
	{func(f WinFlags) bool { return f.BanQiuRen }, "ban_qiu_ren", "半求人", 2},
	{func(f WinFlags) bool { return f.QuanQiuRen }, "quan_qiu_ren", "全求人", 2},
	{func(f WinFlags) bool { return f.DuTing }, "du_ting", "独听", 1},
	{func(f WinFlags) bool { return f.SanAnKe }, "san_an_ke", "三暗刻", 2},
	{func(f WinFlags) bool { return f.SiAnKe }, "si_an_ke", "四暗刻", 5},
	{func(f WinFlags) bool { return f.WuAnKe }, "wu_an_ke", "五暗刻", 8},
	{func(f WinFlags) bool { return f.HunYiSe }, "hun_yi_se", "混一色", 4},
	{func(f WinFlags) bool { return f.QingYiSe }, "qing_yi_se", "清一色", 8},
	{func(f WinFlags) bool { return f.XiaoSanYuan }, "xiao_san_yuan", "小三元", 4},
	{func(f WinFlags) bool { return f.DaSanYuan }, "da_san_yuan", "大三元", 8},
	{func(f WinFlags) bool { return f.XiaoSiXi }, "xiao_si_xi", "小四喜", 8},
	{func(f WinFlags) bool { return f.DaSiXi }, "da_si_xi", "大四喜", 16},
	{func(f WinFlags) bool { return f.ZiYiSe }, "zi_yi_se", "字一色", 8},
	{func(f WinFlags) bool { return f.HaiDiLaoYue }, "hai_di_lao_yue", "海底捞月", 1},
	{func(f WinFlags) bool { return f.HeDiLaoYu }, "he_di_lao_yu", "河底捞鱼", 1},
	{func(f WinFlags) bool { return f.GangShangKaiHua }, "gang_shang_kai_hua", "杠上开花", 1},
	{func(f WinFlags) bool { return f.QiangGangHu }, "qiang_gang_hu", "抢杠胡", 1},
	{func(f WinFlags) bool { return f.TianHu }, "tian_hu", "天胡", 16},
	{func(f WinFlags) bool { return f.DiHu }, "di_hu", "地胡", 16},
	{func(f WinFlags) bool { return f.BaXianGuoHai }, "ba_xian_guo_hai", "八仙过海", 8},
	{func(f WinFlags) bool { return f.HuaGang }, "hua_gang", "花杠", 2},
}

// CalculateTai 计算一手和牌的台数
func CalculateTai(table *TableState, player *PlayerState, playerIndex int, huType HuType, winningTile string) TaiResult {
	result := TaiResult{
		Patterns:     make([]string, 0, 8),
		PatternNames: make([]string, 0, 8),
	}
	add := func(key, name string, tai int) {
		result.OriginalTai += tai
		result.Patterns = append(result.Patterns, key)
		result.PatternNames = append(result.PatternNames, name)
	}

	seatWind := SeatWind(playerIndex, table.DealerIndex, table.WindStart)
	roundWind := Wind(table.WindStart % 4)

	// 门风刻、圈风刻
	if hasTriplet(player, WindTile(seatWind), winningTile, huType) {
		add("seat_wind", "门风刻", 1)
	}
	if hasTriplet(player, WindTile(roundWind), winningTile, huType) {
		add("round_wind", "圈风刻", 1)
	}

	// 三元牌刻子
	for _, d := range dragonTiles {
		if hasTriplet(player, d, winningTile, huType) {
			add("dragon_"+d, "三元刻("+d+")", 1)
		}
	}

	// 正花：花牌对上座风
	for _, fl := range player.Flowers {
		if FlowerMatchesWind(fl, seatWind) {
			add("flower_match", "正花", 1)
		}
	}

	// 庄家
	dealer := playerIndex == table.DealerIndex
	if dealer {
		add(patternKeyDealer, "庄家", 1)
	}

	// 门清/自摸；门清自摸取代两者单独的台
	closed := len(player.Melds) == 0
	zimo := huType == HuZiMo
	switch {
	case closed && zimo:
		add("men_qing_zi_mo", "门清自摸", 3)
	case closed:
		add("men_qing", "门清", 1)
	case zimo:
		add("zi_mo", "自摸", 1)
	}

	// 旗标台型
	for _, p := range flagPatterns {
		if p.hit(player.Flags) {
			add(p.key, p.name, p.tai)
		}
	}

	// 封顶只作用于非庄家部分，庄家台恒定加在封顶后的总数之上
	dealerTai := 0
	if dealer {
		dealerTai = 1
	}
	patternTai := result.OriginalTai - dealerTai
	result.TotalTai = dealerTai + capTai(patternTai, table.CapPolicy)

	return result
}

func capTai(tai int, policy string) int {
	var limit int
	switch policy {
	case CapUpTo4:
		limit = 4
	case CapNoLimit, CapUnlimit:
		return tai
	case CapUpTo8:
		limit = 8
	default:
		// 未识别的策略按 8 台封顶
		limit = 8
	}
	if tai > limit {
		return limit
	}
	return tai
}

// hasTriplet 手牌或副露中是否有给定牌的刻子
// 食胡时胡的那张牌也计入手内张数
func hasTriplet(player *PlayerState, tile string, winningTile string, huType HuType) bool {
	for _, m := range player.Melds {
		if (m.Kind == "pong" || m.Kind == "kong") && len(m.Tiles) > 0 && m.Tiles[0] == tile {
			return true
		}
	}
	count := 0
	for _, t := range player.Hand {
		if t == tile {
			count++
		}
	}
	if huType == HuDiscard && winningTile == tile {
		count++
	}
	return count >= 3
}
