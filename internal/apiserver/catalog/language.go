package catalog

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"shop-admin/internal/config"
)

// Languages 支持的语言集合与匹配器
type Languages struct {
	supported []string
	byTag     map[string]bool
	def       string
	matcher   language.Matcher
}

// NewLanguages 由配置构建语言集合；默认语言排在首位作为匹配兜底
func NewLanguages(cfg config.CatalogConfig) *Languages {
	def := strings.ToLower(cfg.DefaultLanguage)
	if def == "" {
		def = "en"
	}
	ordered := []string{def}
	for _, l := range cfg.Languages {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" && l != def {
			ordered = append(ordered, l)
		}
	}

	tags := make([]language.Tag, 0, len(ordered))
	byTag := make(map[string]bool, len(ordered))
	for _, l := range ordered {
		tags = append(tags, language.Make(l))
		byTag[l] = true
	}
	return &Languages{
		supported: ordered,
		byTag:     byTag,
		def:       def,
		matcher:   language.NewMatcher(tags),
	}
}

// Default 默认语言
func (l *Languages) Default() string {
	return l.def
}

// Supports 是否为受支持的语言代码（精确匹配）
func (l *Languages) Supports(code string) bool {
	return l.byTag[strings.ToLower(strings.TrimSpace(code))]
}

// Match 将任意语言标签列表匹配到支持的语言，无法匹配时返回默认语言
func (l *Languages) Match(prefs ...language.Tag) string {
	if len(prefs) == 0 {
		return l.def
	}
	_, idx, conf := l.matcher.Match(prefs...)
	if conf == language.No {
		return l.def
	}
	return l.supported[idx]
}

// Resolve 请求语言：?lang 优先，其次 Accept-Language，最后默认语言
func (l *Languages) Resolve(r *http.Request) string {
	if raw := strings.TrimSpace(r.URL.Query().Get("lang")); raw != "" {
		if l.Supports(raw) {
			return strings.ToLower(raw)
		}
		if tag, err := language.Parse(raw); err == nil {
			return l.Match(tag)
		}
		return l.def
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		prefs, _, err := language.ParseAcceptLanguage(accept)
		if err == nil {
			return l.Match(prefs...)
		}
	}
	return l.def
}
