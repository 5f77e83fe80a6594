package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsAtInterval(t *testing.T) {
	now := time.Unix(0, 0)
	var buf bytes.Buffer
	p := NewProfiler(
		WithInterval(time.Second),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithClock(func() time.Time { return now }),
	)

	for i := 0; i < 9; i++ {
		now = now.Add(100 * time.Millisecond)
		p.AddDraws(2)
		assert.False(t, p.Tick())
	}
	now = now.Add(100 * time.Millisecond)
	p.AddDraws(2)
	assert.True(t, p.Tick())

	s := p.Last()
	assert.InDelta(t, 10, s.FPS, 0.001)
	assert.InDelta(t, 2, s.DrawsPerFrame, 0.001)
	assert.Contains(t, buf.String(), "fps=10")

	now = now.Add(10 * time.Millisecond)
	assert.False(t, p.Tick())
}
