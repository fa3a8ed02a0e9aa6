package taiwan

// 台湾十六张麻将的牌面编码：直接使用牌面汉字字符串，与旧客户端协议一致

type Wind int

const (
	WindEast  Wind = iota // 东风
	WindSouth             // 南风
	WindWest              // 西风
	WindNorth             // 北风
)

func (w Wind) String() string {
	switch w {
	case WindEast:
		return "東"
	case WindSouth:
		return "南"
	case WindWest:
		return "西"
	case WindNorth:
		return "北"
	default:
		return "未知"
	}
}

func (w Wind) Next() Wind {
	return (w + 1) % 4
}

// WindTile 风牌的牌面编码
func WindTile(w Wind) string {
	return w.String()
}

var (
	manTiles = []string{"一萬", "二萬", "三萬", "四萬", "五萬", "六萬", "七萬", "八萬", "九萬"}
	pinTiles = []string{"一筒", "二筒", "三筒", "四筒", "五筒", "六筒", "七筒", "八筒", "九筒"}
	souTiles = []string{"一條", "二條", "三條", "四條", "五條", "六條", "七條", "八條", "九條"}

	windTiles   = []string{"東", "南", "西", "北"}
	dragonTiles = []string{"中", "發", "白"}

	// 花牌：春夏秋冬对应东南西北，梅蘭菊竹同样按座风对应
	seasonTiles = []string{"春", "夏", "秋", "冬"}
	plantTiles  = []string{"梅", "蘭", "菊", "竹"}
)

var flowerSeatWind = map[string]Wind{
	"春": WindEast, "夏": WindSouth, "秋": WindWest, "冬": WindNorth,
	"梅": WindEast, "蘭": WindSouth, "菊": WindWest, "竹": WindNorth,
}

// IsFlower 是否花牌
func IsFlower(tile string) bool {
	_, ok := flowerSeatWind[tile]
	return ok
}

// FlowerMatchesWind 花牌是否对上座风（正花）
func FlowerMatchesWind(tile string, w Wind) bool {
	fw, ok := flowerSeatWind[tile]
	return ok && fw == w
}

// IsDragon 是否三元牌
func IsDragon(tile string) bool {
	for _, d := range dragonTiles {
		if d == tile {
			return true
		}
	}
	return false
}

// IsWindTile 是否风牌
func IsWindTile(tile string) bool {
	for _, w := range windTiles {
		if w == tile {
			return true
		}
	}
	return false
}

// IsHonor 是否字牌
func IsHonor(tile string) bool {
	return IsWindTile(tile) || IsDragon(tile)
}

// NewDeck 生成一副 144 张的台湾麻将牌（含 8 张花牌）
func NewDeck() []string {
	deck := make([]string, 0, 144)
	for _, group := range [][]string{manTiles, pinTiles, souTiles, windTiles, dragonTiles} {
		for _, t := range group {
			for i := 0; i < 4; i++ {
				deck = append(deck, t)
			}
		}
	}
	deck = append(deck, seasonTiles...)
	deck = append(deck, plantTiles...)
	return deck
}

// SeatWind 计算座风：按庄家为东依次排座，windStart 为本圈起始风
func SeatWind(seat, dealerIndex, windStart int) Wind {
	return Wind((seat - dealerIndex + 4 + windStart) % 4)
}
