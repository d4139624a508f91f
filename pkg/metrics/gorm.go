package metrics

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const startKey = "metrics:start"

// InstrumentDB registers gorm callbacks that observe DBQueryDuration per
// operation.
func InstrumentDB(db *gorm.DB) error {
	before := func(tx *gorm.DB) { tx.InstanceSet(startKey, time.Now()) }
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(startKey)
			if !ok {
				return
			}
			if start, ok := v.(time.Time); ok {
				DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
			}
		}
	}

	cb := db.Callback()
	regs := []struct {
		op  string
		err error
	}{
		{"insert", cb.Create().Before("gorm:create").Register("metrics:before_create", before)},
		{"insert", cb.Create().After("gorm:create").Register("metrics:after_create", after("insert"))},
		{"select", cb.Query().Before("gorm:query").Register("metrics:before_query", before)},
		{"select", cb.Query().After("gorm:query").Register("metrics:after_query", after("select"))},
		{"update", cb.Update().Before("gorm:update").Register("metrics:before_update", before)},
		{"update", cb.Update().After("gorm:update").Register("metrics:after_update", after("update"))},
		{"delete", cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before)},
		{"delete", cb.Delete().After("gorm:delete").Register("metrics:after_delete", after("delete"))},
		{"raw", cb.Raw().Before("gorm:raw").Register("metrics:before_raw", before)},
		{"raw", cb.Raw().After("gorm:raw").Register("metrics:after_raw", after("raw"))},
	}
	for _, r := range regs {
		if r.err != nil {
			return fmt.Errorf("metrics: register %s callback: %w", r.op, r.err)
		}
	}
	return nil
}
