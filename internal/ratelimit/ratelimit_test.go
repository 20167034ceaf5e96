package ratelimit_test

import (
	"testing"
	"time"

	"github.com/joeycumines/collabmd/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

func TestAllowBlocksAfterWindowExhausted(t *testing.T) {
	l := ratelimit.NewWithRates(map[time.Duration]int{time.Minute: 2})
	assert.True(t, l.Allow("alice"))
	assert.True(t, l.Allow("alice"))
	assert.False(t, l.Allow("alice"))
}

func TestAllowIsPerKey(t *testing.T) {
	l := ratelimit.NewWithRates(map[time.Duration]int{time.Minute: 1})
	assert.True(t, l.Allow("alice"))
	assert.True(t, l.Allow("bob"))
	assert.False(t, l.Allow("alice"))
}
