package termview

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/pingcap/errors"
)

const sampleRate = beep.SampleRate(44100)

// chime 远端加入/离开提示音；音频初始化失败时静默
type chime struct {
	ok bool
}

func newChime() (*chime, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &chime{}, errors.Annotate(err, "init speaker")
	}
	return &chime{ok: true}, nil
}

// 加入为上行两音，离开为下行两音
func (c *chime) joined() { c.play(660, 880) }
func (c *chime) left() { c.play(660, 440) }

func (c *chime) play(freqs ...float64) {
	if c == nil || !c.ok {
		return
	}
	var parts []beep.Streamer
	for _, f := range freqs {
		tone, err := generators.SineTone(sampleRate, f)
		if err != nil {
			return
		}
		parts = append(parts, beep.Take(sampleRate.N(60*time.Millisecond), tone))
	}
	speaker.Play(beep.Seq(parts...))
}

func (c *chime) close() {
	if c != nil && c.ok {
		speaker.Close()
	}
}

// roster 比较前后两次远端 ID 集合
type roster map[string]struct{}

func (r roster) diff(ids []string) (next roster, joined, left int) {
	next = make(roster, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
		if _, ok := r[id]; !ok {
			joined++
		}
	}
	for id := range r {
		if _, ok := next[id]; !ok {
			left++
		}
	}
	return next, joined, left
}
