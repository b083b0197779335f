package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	assert.Equal(t, "", Value{}.String())
	assert.Equal(t, "abc", NewValue("abc").String())
	assert.Equal(t, "42", NewValue(42).String())

	assert.Equal(t, 7, NewValue(7).Int())
	assert.Equal(t, 7, NewValue(7.9).Int())
	assert.Equal(t, 12, NewValue("12").Int())
	assert.Equal(t, 0, NewValue("x").Int())

	assert.True(t, NewValue(true).Bool())
	assert.True(t, NewValue("true").Bool())
	assert.False(t, NewValue(1).Bool())

	m := NewValue(map[string]any{"a": "b"})
	assert.True(t, m.IsMap())
	assert.Equal(t, "b", m.Map()["a"].String())
	assert.False(t, NewValue("a").IsMap())
	assert.Nil(t, NewValue("a").Map())
}
