package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordFilterNormalize(t *testing.T) {
	f := &RecordFilter{}
	f.normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, defaultRecordLimit, f.Limit)

	f = &RecordFilter{Page: -3, Limit: 99999}
	f.normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, maxRecordLimit, f.Limit)
}

func TestIntervalFilterNormalize(t *testing.T) {
	f := &IntervalFilter{Page: 2, Limit: 10}
	f.normalize()
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 10, f.Limit)

	f = &IntervalFilter{Limit: 9999}
	f.normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, maxIntervalLimit, f.Limit)
}
