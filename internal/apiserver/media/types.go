package media

import (
	"mime"
	"path"
	"regexp"
	"strings"

	"shop-admin/internal/shared/model"
)

// 上传允许的 MIME 类型
var allowedTypes = map[string]model.MediaType{
	"image/jpeg":      model.MediaTypeImage,
	"image/png":       model.MediaTypeImage,
	"image/gif":       model.MediaTypeImage,
	"image/webp":      model.MediaTypeImage,
	"image/avif":      model.MediaTypeImage,
	"video/mp4":       model.MediaTypeVideo,
	"video/webm":      model.MediaTypeVideo,
	"video/quicktime": model.MediaTypeVideo,
}

// extensions 已知媒体扩展名 -> MIME，用于补全文件名与兜底路由
var extensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// preferredExt MIME -> 补全用扩展名
var preferredExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
}

// Classify 返回 MIME 对应的媒体大类；不在白名单内返回 false
func Classify(mimeType string) (model.MediaType, bool) {
	t, ok := allowedTypes[normalizeMime(mimeType)]
	return t, ok
}

// IsMediaPath 路径扩展名是否为已知媒体类型
func IsMediaPath(p string) bool {
	_, ok := extensions[strings.ToLower(path.Ext(p))]
	return ok
}

// ContentTypeFor 按扩展名推断 Content-Type
func ContentTypeFor(p string) string {
	if ct, ok := extensions[strings.ToLower(path.Ext(p))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func normalizeMime(s string) string {
	mt, _, err := mime.ParseMediaType(s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return mt
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

const maxFilenameLength = 100

// SanitizeFilename 将上传文件名规整为安全的存储键片段
// 只保留小写字母、数字、点、下划线、连字符；缺少扩展名时按 MIME 补全
func SanitizeFilename(name, mimeType string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.ToLower(path.Base(name))
	name = unsafeChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, ".-_")

	ext := path.Ext(name)
	base := strings.Trim(strings.TrimSuffix(name, ext), ".-_")
	if base == "" {
		base = "file"
	}
	if _, known := extensions[ext]; !known {
		base = strings.Trim(base+ext, ".-_")
		if base == "" {
			base = "file"
		}
		ext = preferredExt[normalizeMime(mimeType)]
	}
	if len(base) > maxFilenameLength {
		base = base[:maxFilenameLength]
	}
	return base + ext
}
