package server

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or issues a new one
func RequestIDMiddleware(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
	if id == "" {
		id = utils.NewRequestID()
	}
	c.Set(requestIDKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString(requestIDKey),
	}
	if c.Writer.Status() >= http.StatusInternalServerError {
		utils.Warn("HTTP Request", fields)
		return
	}
	utils.Info("HTTP Request", fields)
}

// CORSMiddleware allows the listed origins, or any origin when the list holds "*"
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	wildcard := lo.Contains(allowed, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (wildcard || lo.Contains(allowed, origin)) {
			if wildcard {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			c.Header("Access-Control-Expose-Headers", RequestIDHeader)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware throttles write requests per client IP. Reads are never
// limited and a non-positive limit disables the middleware.
func RateLimitMiddleware(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}

	var limiters sync.Map // client ip -> *rate.Limiter
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		ip := c.ClientIP()
		limiter, ok := limiters.Load(ip)
		if !ok {
			limiter, _ = limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(perSecond), burst))
		}
		if !limiter.(*rate.Limiter).Allow() {
			utils.Warn("rate limit exceeded", map[string]any{
				"client_ip":  ip,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(requestIDKey),
			})
			utils.JSONError(c, http.StatusTooManyRequests, errors.New("rate limit exceeded"), "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
