package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("wallet.JPG"))
	assert.True(t, IsImage("keys.webp"))
	assert.False(t, IsImage("notes.pdf"))
	assert.False(t, IsImage("noext"))
}

func TestPublicIDFor(t *testing.T) {
	now := time.Unix(0, 42)
	assert.Equal(t, "42-blue-umbrella", publicIDFor("Blue Umbrella!.png", now))
	assert.Equal(t, "42-item", publicIDFor("???.jpg", now))
	assert.Equal(t, "42-passwd", publicIDFor("../../etc/passwd.png", now))
}
