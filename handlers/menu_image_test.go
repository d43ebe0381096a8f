package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camden-git/menusysbackend/media"
)

func TestUploadMemoryLimitUsesConfiguredCeiling(t *testing.T) {
	mh := &MenuItemHandler{MaxUploadSize: 2 * 1024 * 1024}
	assert.Equal(t, int64(2*1024*1024+multipartOverhead), mh.uploadMemoryLimit())
}

func TestUploadMemoryLimitFallsBackToDefault(t *testing.T) {
	assert.Equal(t, int64(media.DefaultMaxUploadSize+multipartOverhead), (&MenuItemHandler{}).uploadMemoryLimit())
	assert.Equal(t, int64(media.DefaultMaxUploadSize+multipartOverhead), (&MenuItemHandler{MaxUploadSize: -1}).uploadMemoryLimit())
}
