// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/craftkala/craftkala-backend/internal/i18n"
)

// Language resolves the response language from ?lang= or Accept-Language,
// defaulting to English.
func Language() gin.HandlerFunc {
	supported := make(map[string]bool)
	for _, lang := range i18n.GetSupportedLanguages() {
		supported[lang] = true
	}

	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			header := c.GetHeader("Accept-Language")
			if header != "" {
				lang = strings.SplitN(strings.SplitN(header, ",", 2)[0], "-", 2)[0]
			}
		}
		if !supported[lang] {
			lang = "en"
		}
		c.Set("lang", lang)
		c.Next()
	}
}
