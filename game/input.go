package game

// Key 方向键名称（与浏览器 KeyboardEvent.key 一致）
type Key string

const (
	KeyUp    Key = "ArrowUp"
	KeyDown  Key = "ArrowDown"
	KeyLeft  Key = "ArrowLeft"
	KeyRight Key = "ArrowRight"
)

// IsMovementKey 是否为四个可识别的移动键
func IsMovementKey(k Key) bool {
	switch k {
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		return true
	}
	return false
}

// InputSet 当前按住的移动键集合（只读视图）
type InputSet map[Key]struct{}

// Has 是否按住某键
func (s InputSet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// InputTracker 维护按住的移动键；纯本地状态，没有其他副作用
type InputTracker struct {
	held InputSet
}

func NewInputTracker() *InputTracker {
	return &InputTracker{held: make(InputSet, 4)}
}

// KeyDown 非移动键直接忽略
func (t *InputTracker) KeyDown(k Key) {
	if !IsMovementKey(k) {
		return
	}
	t.held[k] = struct{}{}
}

// KeyUp 无条件移除，不存在时为 no-op
func (t *InputTracker) KeyUp(k Key) {
	delete(t.held, k)
}

// Held 返回当前集合的副本，调用方修改不影响 tracker
func (t *InputTracker) Held() InputSet {
	out := make(InputSet, len(t.held))
	for k := range t.held {
		out[k] = struct{}{}
	}
	return out
}

// Reset 清空所有按键（失焦、卸载时调用，防止按键卡住漂移）
func (t *InputTracker) Reset() {
	for k := range t.held {
		delete(t.held, k)
	}
}
