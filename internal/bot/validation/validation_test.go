package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidClass(t *testing.T) {
	for grade := 5; grade <= 9; grade++ {
		for _, letter := range []string{"А", "Б", "В"} {
			name := fmt.Sprintf("%d%s", grade, letter)
			assert.True(t, IsValidClass(name), name)
		}
	}
	for _, name := range []string{"10П", "10Р", "11Р"} {
		assert.True(t, IsValidClass(name), name)
	}
	for _, name := range []string{"12А", "10А", "4А", "5Г", "5A", "", "10", "П", "11П"} {
		assert.False(t, IsValidClass(name), name)
	}
}

func TestIsValidClassNormalizes(t *testing.T) {
	assert.True(t, IsValidClass(" 5а "))
	assert.True(t, IsValidClass("10п"))
}

func TestIsValidFullName(t *testing.T) {
	assert.True(t, IsValidFullName("Иванов Иван Иванович"))
	assert.True(t, IsValidFullName("Иванов Иван"))

	assert.False(t, IsValidFullName("Иванов"))
	assert.False(t, IsValidFullName("Иванов И"))
	assert.False(t, IsValidFullName("Иванов Иван123"))
	assert.False(t, IsValidFullName(""))
	assert.False(t, IsValidFullName("Оченьоченьоченьдлинноеслово Иванович"))
}

func TestIsValidTime(t *testing.T) {
	for _, s := range []string{"8:00", "08:00", "23:59", "0:05", "13:40"} {
		assert.True(t, IsValidTime(s), s)
	}
	for _, s := range []string{"24:00", "8:60", "8:0", "800", "8.00", "", "8:00 "} {
		assert.False(t, IsValidTime(s), s)
	}
}

func TestIsLessonLine(t *testing.T) {
	assert.True(t, IsLessonLine("1. Математика"))
	assert.True(t, IsLessonLine("2. Физика (Иванов) - 201"))

	assert.False(t, IsLessonLine("abc"))
	assert.False(t, IsLessonLine(""))
	assert.False(t, IsLessonLine("1 Математика"))
}
