package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaTypeFromContentType(t *testing.T) {
	assert.Equal(t, "video", MediaTypeFromContentType("video/mp4"))
	assert.Equal(t, "video", MediaTypeFromContentType("video/webm"))
	assert.Equal(t, "image", MediaTypeFromContentType("image/png"))
	assert.Equal(t, "image", MediaTypeFromContentType("application/octet-stream"))
	assert.Equal(t, "image", MediaTypeFromContentType(""))
}
