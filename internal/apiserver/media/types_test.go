package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"shop-admin/internal/shared/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want model.MediaType
		ok   bool
	}{
		{"image/jpeg", model.MediaTypeImage, true},
		{"IMAGE/PNG", model.MediaTypeImage, true},
		{"image/avif", model.MediaTypeImage, true},
		{"video/quicktime", model.MediaTypeVideo, true},
		{"video/webm; codecs=vp9", model.MediaTypeVideo, true},
		{"image/svg+xml", "", false},
		{"application/pdf", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Classify(tt.mime)
		assert.Equal(t, tt.ok, ok, tt.mime)
		assert.Equal(t, tt.want, got, tt.mime)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name, mime, want string
	}{
		{"Photo 1.JPG", "image/jpeg", "photo-1.jpg"},
		{"../../etc/passwd", "image/png", "passwd.png"},
		{`C:\Users\me\clip.mov`, "video/quicktime", "clip.mov"},
		{"", "image/webp", "file.webp"},
		{"réunion été.png", "image/png", "r-union-t.png"},
		{"notes.txt", "image/gif", "notes.txt.gif"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.name, tt.mime), tt.name)
	}

	long := SanitizeFilename(strings.Repeat("a", 300)+".png", "image/png")
	assert.Equal(t, maxFilenameLength+len(".png"), len(long))
}

func TestIsMediaPath(t *testing.T) {
	assert.True(t, IsMediaPath("/uploads/a.WEBP"))
	assert.True(t, IsMediaPath("/x/clip.mp4"))
	assert.False(t, IsMediaPath("/assets/app.js"))
	assert.False(t, IsMediaPath("/products/12"))
	assert.Equal(t, "video/mp4", ContentTypeFor("a.mp4"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a.bin"))
}
