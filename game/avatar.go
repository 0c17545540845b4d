package game

// Direction 角色朝向（封闭枚举）
type Direction string

const (
	DirFront Direction = "front"
	DirBack  Direction = "back"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

const (
	// DefaultSize 精灵渲染边长（像素），整个会话内不变
	DefaultSize = 64
	// DefaultSpeed 每个 Tick 按键持续时移动的像素
	DefaultSpeed = 5
	// DefaultName 远端 presence 缺少名字时显示的标签
	DefaultName = "Player"

	// 单人模式画布尺寸
	DefaultWidth  = 640
	DefaultHeight = 480
)

// DefaultSpawn 新加入房间时的初始位置，同时是远端字段缺失时的兜底坐标
var DefaultSpawn = Position{X: 50, Y: 50}

// ParseDirection 解析朝向字符串，不认识的值返回 false
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirFront, DirBack, DirLeft, DirRight:
		return Direction(s), true
	}
	return DirFront, false
}

// Position 画布像素坐标
type Position struct {
	X float64
	Y float64
}

// Bounds 可绘制区域大小
type Bounds struct {
	Width  float64
	Height float64
}

// AvatarState 一个参与者可见表示的完整描述
type AvatarState struct {
	Name      string
	Position  Position
	Size      float64
	Speed     float64
	Direction Direction
}

// NewAvatar 以加入房间得到的名字与初始位置/朝向构造本地角色
func NewAvatar(name string, at Position, dir Direction) AvatarState {
	if _, ok := ParseDirection(string(dir)); !ok {
		dir = DirFront
	}
	return AvatarState{
		Name:      name,
		Position:  at,
		Size:      DefaultSize,
		Speed:     DefaultSpeed,
		Direction: dir,
	}
}

// presenceKey 发布判重用的三元组
type presenceKey struct {
	x, y float64
	dir  Direction
}

func (a AvatarState) key() presenceKey {
	return presenceKey{x: a.Position.X, y: a.Position.Y, dir: a.Direction}
}

// Fields 转为 presence 字段（name + 三元组）
func (a AvatarState) Fields() Fields {
	return Fields{
		FieldName:      a.Name,
		FieldX:         a.Position.X,
		FieldY:         a.Position.Y,
		FieldDirection: string(a.Direction),
	}
}
