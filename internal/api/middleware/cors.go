package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func ConfigCORS(allowedDomains []string) gin.HandlerFunc {
	if len(allowedDomains) == 0 {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	conf := cors.DefaultConfig()
	conf.AllowOrigins = allowedDomains
	conf.AllowCredentials = true
	conf.AddAllowHeaders("X-Requested-With", "X-Request-ID")
	conf.AddExposeHeaders("X-Request-ID", "Content-Disposition")

	return cors.New(conf)
}
