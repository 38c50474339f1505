package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMappedNameFallsBack(t *testing.T) {
	tr := &Translated{MappedNames: map[string]string{"speed": "_uspeed", "empty": ""}}
	assert.Equal(t, "_uspeed", tr.MappedName("speed"))
	assert.Equal(t, "other", tr.MappedName("other"))
	assert.Equal(t, "empty", tr.MappedName("empty"))

	id := Identity("void main() {}")
	assert.Equal(t, "void main() {}", id.Code)
	assert.Equal(t, "speed", id.MappedName("speed"))
}
