// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hirehub/hirehub-backend/internal/i18n"
)

// I18nMiddleware picks the response language from Accept-Language. Only
// English and Traditional Chinese are shipped.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", parseLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func parseLanguage(header string) string {
	if header == "" {
		return i18n.DefaultLanguage
	}

	// Handle cases like "zh-TW,zh;q=0.9,en;q=0.8"
	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch strings.ToLower(first) {
	case "zh-tw", "zh-hant", "zh_tw", "zh":
		return "zh_TW"
	default:
		return i18n.DefaultLanguage
	}
}
