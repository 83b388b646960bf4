package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieConfig describes the refresh token cookie.
type CookieConfig struct {
	Name   string
	Path   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

type refreshCookie struct {
	cfg CookieConfig
}

func (rc refreshCookie) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(rc.cfg.Name, token, int(rc.cfg.MaxAge.Seconds()), rc.cfg.Path, rc.cfg.Domain, rc.cfg.Secure, true)
}

func (rc refreshCookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(rc.cfg.Name, "", -1, rc.cfg.Path, rc.cfg.Domain, rc.cfg.Secure, true)
}

func (rc refreshCookie) read(c *gin.Context) string {
	value, err := c.Cookie(rc.cfg.Name)
	if err != nil {
		return ""
	}
	return value
}
