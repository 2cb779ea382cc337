package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest128Deterministic(t *testing.T) {
	a := digest128("level0")
	b := digest128("level0")
	assert.Equal(t, a, b)
	assert.Len(t, a, 22)
	assert.NotEqual(t, a, digest128("level1"))
}

func TestUniqIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := uniqID()
		assert.Len(t, id, 32)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestChildRowHashSensitivity(t *testing.T) {
	base := childRowHash("p", "t__c", 0)
	assert.Equal(t, base, childRowHash("p", "t__c", 0))
	assert.NotEqual(t, base, childRowHash("q", "t__c", 0))
	assert.NotEqual(t, base, childRowHash("p", "t__d", 0))
	assert.NotEqual(t, base, childRowHash("p", "t__c", 1))
}

func TestStringForm(t *testing.T) {
	assert.Equal(t, "x", stringForm("x"))
	assert.Equal(t, "true", stringForm(true))
	assert.Equal(t, "120", stringForm(120))
	assert.Equal(t, "8129173987192873", stringForm(int64(8129173987192873)))
	assert.Equal(t, "12102.45", stringForm(12102.45))
}
