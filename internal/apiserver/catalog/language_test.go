package catalog

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"shop-admin/internal/config"
)

func TestResolveLanguage(t *testing.T) {
	langs := NewLanguages(config.CatalogConfig{Languages: []string{"en", "fr", "de"}, DefaultLanguage: "en"})

	tests := []struct {
		name   string
		query  string
		accept string
		want   string
	}{
		{"default", "", "", "en"},
		{"explicit", "?lang=fr", "", "fr"},
		{"explicit uppercase", "?lang=DE", "", "de"},
		{"explicit regional", "?lang=fr-CA", "", "fr"},
		{"explicit unsupported", "?lang=ja", "", "en"},
		{"explicit garbage", "?lang=!!", "", "en"},
		{"query beats header", "?lang=de", "fr", "de"},
		{"accept-language", "", "fr-FR,fr;q=0.9,en;q=0.8", "fr"},
		{"accept-language weighted", "", "ja;q=0.9,de;q=0.5", "de"},
		{"accept-language unsupported", "", "zh-CN", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/products"+tt.query, nil)
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			assert.Equal(t, tt.want, langs.Resolve(r))
		})
	}

	assert.True(t, langs.Supports("FR"))
	assert.False(t, langs.Supports("es"))
	assert.Equal(t, "en", langs.Default())
}
