package collision

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Category is a class of degraded query result that is logged once.
type Category uint8

const (
	CategoryNaNPosition Category = iota
	CategoryNaNNormal
	CategoryNonUnitNormal
	CategoryPenetrationNaN
	CategoryUnsupportedGeometry
	CategoryMissingOwner
	CategoryPairLockConflict
	CategoryQueryNaN
	categoryCount
)

var categoryNames = [...]string{
	CategoryNaNPosition:         "nan_position",
	CategoryNaNNormal:           "nan_normal",
	CategoryNonUnitNormal:       "non_unit_normal",
	CategoryPenetrationNaN:      "penetration_nan",
	CategoryUnsupportedGeometry: "unsupported_geometry",
	CategoryMissingOwner:        "missing_owner",
	CategoryPairLockConflict:    "pair_lock_conflict",
	CategoryQueryNaN:            "query_nan",
}

func (c Category) String() string {
	if c < categoryCount {
		return categoryNames[c]
	}
	return "unknown"
}

// Diagnostics reports each failure category once per instance. It is safe for
// concurrent use.
type Diagnostics struct {
	log  log.FieldLogger
	seen atomic.Uint32
}

func NewDiagnostics(logger log.FieldLogger) *Diagnostics {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Diagnostics{log: logger}
}

func (d *Diagnostics) Logger() log.FieldLogger { return d.log }

// Once logs msg at warn level the first time cat is reported. It returns
// whether the message was written.
func (d *Diagnostics) Once(cat Category, fields log.Fields, msg string) bool {
	bit := uint32(1) << cat
	for {
		old := d.seen.Load()
		if old&bit != 0 {
			return false
		}
		if d.seen.CompareAndSwap(old, old|bit) {
			break
		}
	}
	d.log.WithFields(fields).WithField("category", cat.String()).Warn(msg)
	return true
}

// Seen reports whether cat has been logged.
func (d *Diagnostics) Seen(cat Category) bool {
	return d.seen.Load()&(uint32(1)<<cat) != 0
}
