package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	list := List()
	require.Len(t, list, 4)
	assert.Equal(t, "5-Minute Box Breathing", list[0].Title)
	assert.Equal(t, "Panic", list[3].Category)

	list[0].Title = "changed"
	assert.Equal(t, "5-Minute Box Breathing", List()[0].Title)
}
