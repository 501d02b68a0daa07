package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	d := decimal.RequireFromString
	assert.Equal(t, int64(0), Progress(d("500"), decimal.Zero))
	assert.Equal(t, int64(0), Progress(d("500"), d("-10")))
	assert.Equal(t, int64(50), Progress(d("500"), d("1000")))
	assert.Equal(t, int64(33), Progress(d("1"), d("3")))
	assert.Equal(t, int64(67), Progress(d("2"), d("3")))
	assert.Equal(t, int64(150), Progress(d("1500"), d("1000")))
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeRevenue.Valid())
	assert.True(t, TypeCustom.Valid())
	assert.False(t, Type("outro").Valid())
}
