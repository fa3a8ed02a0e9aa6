package taiwan

var rankNames = []string{"一", "二", "三", "四", "五", "六", "七", "八", "九"}

var suitNames = []string{"萬", "筒", "條"}

// RankSuit 解析数牌的点数与花色；字牌和花牌返回 ok=false
func RankSuit(tile string) (rank int, suit string, ok bool) {
	runes := []rune(tile)
	if len(runes) != 2 {
		return 0, "", false
	}
	r, s := string(runes[0]), string(runes[1])
	for i, name := range rankNames {
		if name == r {
			for _, sn := range suitNames {
				if sn == s {
					return i + 1, sn, true
				}
			}
		}
	}
	return 0, "", false
}

// NumberTile 按点数与花色拼出数牌编码；越界返回空串
func NumberTile(rank int, suit string) string {
	if rank < 1 || rank > 9 {
		return ""
	}
	return rankNames[rank-1] + suit
}
