package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// versionPrefixMiddleware enforces the "/v{n}" URL prefix §6 requires.
func versionPrefixMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		seg := c.Param("versionPrefix")
		if !strings.HasPrefix(seg, "v") {
			abortWithError(c, ibukierr.New(ibukierr.KindUnknownVersion, "missing version prefix"))
			return
		}
		if _, err := strconv.Atoi(seg[1:]); err != nil {
			abortWithError(c, ibukierr.New(ibukierr.KindUnknownVersion, "malformed version prefix"))
			return
		}
		c.Next()
	}
}

// authMiddleware implements the §6 "static-token equality" authentication
// check against the Authorization header.
func authMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != token {
			abortWithError(c, ibukierr.New(ibukierr.KindUnauthorized, "invalid or missing authorization token"))
			return
		}
		c.Next()
	}
}

// abortWithError maps a taxonomy error to the §7 HTTP status and a JSON
// body, then halts the handler chain.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	if e, ok := err.(*ibukierr.Error); ok {
		status = e.Kind.HTTPStatus()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
