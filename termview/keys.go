package termview

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"spriteroom/game"
)

// 首次按下要覆盖终端的自动重复延迟；重复到达后窗口缩短
const (
	firstHold  = 550 * time.Millisecond
	repeatHold = 120 * time.Millisecond
)

var arrowKeys = map[tcell.Key]game.Key{
	tcell.KeyUp:    game.KeyUp,
	tcell.KeyDown:  game.KeyDown,
	tcell.KeyLeft:  game.KeyLeft,
	tcell.KeyRight: game.KeyRight,
}

type held struct {
	last     time.Time
	repeated bool
}

// keyHold 终端只上报按下与自动重复，没有松开事件：超过窗口未再收到即视为松开
type keyHold struct {
	keys map[game.Key]*held
}

func newKeyHold() *keyHold {
	return &keyHold{keys: make(map[game.Key]*held)}
}

// press 返回是否为新按下
func (k *keyHold) press(key game.Key, now time.Time) bool {
	if h, ok := k.keys[key]; ok {
		h.last = now
		h.repeated = true
		return false
	}
	k.keys[key] = &held{last: now}
	return true
}

// expire 返回已超时松开的按键
func (k *keyHold) expire(now time.Time) []game.Key {
	var out []game.Key
	for key, h := range k.keys {
		window := firstHold
		if h.repeated {
			window = repeatHold
		}
		if now.Sub(h.last) > window {
			out = append(out, key)
			delete(k.keys, key)
		}
	}
	return out
}

func (k *keyHold) reset() {
	clear(k.keys)
}
