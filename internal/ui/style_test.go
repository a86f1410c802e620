package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTablePlain(t *testing.T) {
	got := Table("capabilities", []Field{
		{Key: "statx", Value: "yes"},
		{Key: "copy_file_range", Value: "no"},
	}, false)

	want := "capabilities\n" +
		"  statx            yes\n" +
		"  copy_file_range  no\n"
	assert.Equal(t, want, got)
}

func TestTableNoTitle(t *testing.T) {
	assert.Equal(t, "  a  1\n", Table("", []Field{{Key: "a", Value: "1"}}, false))
}

func TestTableStyledKeepsText(t *testing.T) {
	got := Table("title", []Field{{Key: "size", Value: "42"}}, true)
	assert.Contains(t, got, "title")
	assert.Contains(t, got, "size")
	assert.Contains(t, got, "42")
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", YesNo(true, false))
	assert.Equal(t, "no", YesNo(false, false))
	assert.Contains(t, YesNo(true, true), "yes")
}
