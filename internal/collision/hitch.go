package collision

import (
	"time"

	log "github.com/sirupsen/logrus"

	"scenequery/internal/physics"
)

// hitchRepeater times a query and, when it ran past the hitch threshold,
// replays it into copies of the buffer as it was before the first run. The
// replays only produce timings; the caller's buffer keeps the first result.
type hitchRepeater[H physics.QueryHit] struct {
	cfg      HitchConfig
	log      log.FieldLogger
	name     string
	buf      *physics.HitBuffer[H]
	snapshot *physics.HitBuffer[H]
	repeats  int
}

func newHitchRepeater[H physics.QueryHit](cfg HitchConfig, logger log.FieldLogger, name string, buf *physics.HitBuffer[H]) *hitchRepeater[H] {
	r := &hitchRepeater[H]{cfg: cfg, log: logger, name: name, buf: buf}
	if cfg.Mode == HitchRepeat {
		r.snapshot = buf.Clone()
	}
	return r
}

func (r *hitchRepeater[H]) run(query func(*physics.HitBuffer[H]) bool) bool {
	if r.cfg.Mode == HitchOff {
		return query(r.buf)
	}
	start := time.Now()
	hit := query(r.buf)
	elapsed := time.Since(start)
	if elapsed < r.cfg.Threshold() {
		return hit
	}

	entry := r.log.WithFields(log.Fields{
		"query":   r.name,
		"elapsed": elapsed,
		"hits":    r.buf.NumHits(),
	})
	if r.cfg.Mode != HitchRepeat || r.snapshot == nil {
		entry.Warn("SQ: slow scene query")
		return hit
	}

	timings := make([]time.Duration, 0, r.cfg.MaxRepeats)
	for i := 0; i < r.cfg.MaxRepeats; i++ {
		replay := r.snapshot.Clone()
		start = time.Now()
		query(replay)
		timings = append(timings, time.Since(start))
		r.repeats++
	}
	entry.WithField("repeats", timings).Warn("SQ: slow scene query, replayed")
	return hit
}
