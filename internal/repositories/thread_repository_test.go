package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSortPairIsOrderIndependent(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	first1, second1 := sortPair(a, b)
	first2, second2 := sortPair(b, a)

	assert.Equal(t, first1, first2)
	assert.Equal(t, second1, second2)
	assert.Equal(t, a, first1)
	assert.Equal(t, b, second1)
}

func TestSortPairIdenticalIDs(t *testing.T) {
	a := uuid.New()
	first, second := sortPair(a, a)
	assert.Equal(t, a, first)
	assert.Equal(t, a, second)
}
