package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// ResponseCache memoizes GET responses for routes whose data rarely changes.
// Partners and entrepreneurs are seeded once and immutable, so their listings
// are safe to serve from memory for the TTL.
type ResponseCache struct {
	store *cache.Cache
}

type cachedResponse struct {
	contentType string
	body        []byte
}

func NewResponseCache(ttl, cleanupInterval time.Duration) *ResponseCache {
	return &ResponseCache{
		store: cache.New(ttl, cleanupInterval),
	}
}

type cachingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cachingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (rc *ResponseCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if entry, ok := rc.store.Get(key); ok {
			cached := entry.(cachedResponse)
			c.Data(http.StatusOK, cached.contentType, cached.body)
			c.Abort()
			return
		}

		w := &cachingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			rc.store.Set(key, cachedResponse{
				contentType: c.Writer.Header().Get("Content-Type"),
				body:        w.body.Bytes(),
			}, cache.DefaultExpiration)
		}
	}
}
