package pipeline

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/authn"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/proxy"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/registry"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/routes"
)

// Pipeline composes the gateway's per-request decision:
// classify -> (authenticate if protected) -> proxy. Single pass, no retries,
// no state kept between requests.
type Pipeline struct {
	reg      *registry.Registry
	cls      *routes.Classifier
	verifier authn.Verifier
	prx      *proxy.Proxy
	log      *logrus.Logger
}

func New(reg *registry.Registry, cls *routes.Classifier, v authn.Verifier, prx *proxy.Proxy, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{reg: reg, cls: cls, verifier: v, prx: prx, log: log}
}

// Router mounts the full gateway surface on a fresh gin engine.
func (p *Pipeline) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "Accept", "Origin", "X-Requested-With"},
	}))
	r.Use(p.authenticate())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"gateway": "healthy"})
	})

	r.Any("/auth/*rest", p.proxyTo(registry.SvcUser, keepPath))
	r.Any("/users/*rest", p.proxyTo(registry.SvcUser, keepPath))
	r.Any("/admin/*rest", p.proxyTo(registry.SvcUser, keepPath))
	r.Any("/matches/*rest", p.proxyTo(registry.SvcMatch, keepPath))
	r.Any("/bookings/*rest", p.proxyTo(registry.SvcBooking, keepPath))
	r.Any("/venues/*rest", p.proxyTo(registry.SvcVenue, keepPath))
	// chat service mounts its routes without the /chat prefix
	r.Any("/chat/*rest", p.proxyTo(registry.SvcChat, stripChatPrefix))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
	})
	return r
}

func keepPath(path string) string { return path }

func stripChatPrefix(path string) string {
	rest := strings.TrimPrefix(path, "/chat")
	if rest == "" {
		rest = "/"
	}
	return rest
}

// authenticate gates protected routes on a valid bearer token. Public
// traffic skips the identity round trip entirely; that ordering is the
// point of classifying first.
func (p *Pipeline) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.Request.URL.Path
		if p.cls.Classify(method, path) == routes.Public {
			c.Next()
			return
		}

		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization required"})
			return
		}
		token := strings.TrimPrefix(h, "Bearer ")

		claims, err := p.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if denied, ok := err.(*authn.DeniedError); ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": denied.Detail})
				return
			}
			p.log.WithError(err).WithField("path", path).Error("identity service unreachable")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Auth service unavailable"})
			return
		}

		// hand the derived identity to the upstream; Authorization is still
		// forwarded so it can re-verify on its own if it wants
		c.Request.Header.Set("X-User-Id", claims.SubjectID)
		c.Request.Header.Set("X-User-Email", claims.Email)
		c.Next()
	}
}

func (p *Pipeline) proxyTo(service string, rewrite func(string) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		base, err := p.reg.Resolve(service)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Service unavailable"})
			return
		}
		res, err := p.prx.Forward(c.Request.Context(), base, rewrite(c.Request.URL.Path), c.Request)
		if err != nil {
			p.log.WithError(err).WithFields(logrus.Fields{
				"service": service,
				"path":    c.Request.URL.Path,
			}).Error("upstream error")
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Service unavailable"})
			return
		}
		if res.IsJSON() {
			c.JSON(res.Status, res.JSON)
			return
		}
		c.Data(res.Status, res.ContentType, res.Body)
	}
}
