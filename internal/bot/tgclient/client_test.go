package tgclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeHTMLEscapesUserText(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;", safeHTML("<script>"))
	assert.Equal(t, "5А &amp; 5Б", safeHTML("5А & 5Б"))
}

func TestSafeHTMLKeepsFormattingTags(t *testing.T) {
	in := "📅 <b>Расписание 5А класса</b>\n1. <b>Математика</b> <i>каб. 201</i>"
	assert.Equal(t, in, safeHTML(in))

	mixed := "<b>Имя:</b> <Иванов>"
	assert.Equal(t, "<b>Имя:</b> &lt;Иванов&gt;", safeHTML(mixed))
}

func TestTruncateMessage(t *testing.T) {
	short := "короткий текст"
	assert.Equal(t, short, truncateMessage(short))

	long := strings.Repeat("ы", 5000)
	got := truncateMessage(long)
	assert.Len(t, []rune(got), maxMessageLength)
	assert.True(t, strings.HasSuffix(got, "..."))
}
