package game

// 固定求值顺序：上、下、左、右；多键同按时最后一个生效的轴决定朝向
var motionOrder = [...]struct {
	key    Key
	dx, dy float64
	dir    Direction
}{
	{KeyUp, 0, -1, DirBack},
	{KeyDown, 0, 1, DirFront},
	{KeyLeft, -1, 0, DirLeft},
	{KeyRight, 1, 0, DirRight},
}

// Resolve 根据按键集合推进角色一步并进行越界裁剪（纯函数）
// 允许斜向移动；无按键时朝向不变，位置只在视口缩小后被拉回边界内
func Resolve(a AvatarState, held InputSet, b Bounds) AvatarState {
	maxX := clampMin(b.Width-a.Size, 0)
	maxY := clampMin(b.Height-a.Size, 0)

	for _, m := range motionOrder {
		if !held.Has(m.key) {
			continue
		}
		if m.dx != 0 {
			a.Position.X = clamp(a.Position.X+m.dx*a.Speed, 0, maxX)
		}
		if m.dy != 0 {
			a.Position.Y = clamp(a.Position.Y+m.dy*a.Speed, 0, maxY)
		}
		a.Direction = m.dir
	}
	// 两个轴都裁剪：Resize 之后的下一个 tick 恢复边界不变量
	a.Position.X = clamp(a.Position.X, 0, maxX)
	a.Position.Y = clamp(a.Position.Y, 0, maxY)
	return a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampMin(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}
