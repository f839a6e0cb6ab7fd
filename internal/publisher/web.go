package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ryosukesatoh/hn-digest/internal/logging"
	"github.com/ryosukesatoh/hn-digest/internal/report"
)

const emptyPage = `<!DOCTYPE html><html><body><h1>Hacker News Digest</h1><p>No report available yet. Check back later.</p></body></html>`

// WebPublisher serves the latest report over HTTP.
type WebPublisher struct {
	addr   string
	engine *gin.Engine
	server *http.Server
	logger *slog.Logger
	mu     sync.RWMutex
	latest *report.Report
	ln     net.Listener
}

func NewWebPublisher(addr string, logger *slog.Logger) *WebPublisher {
	gin.SetMode(gin.ReleaseMode)

	wp := &WebPublisher{addr: addr, logger: logging.OrDiscard(logger)}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", wp.handleIndex)
	r.GET("/report.md", wp.handleMarkdown)
	r.GET("/api/report", wp.handleJSON)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	wp.engine = r
	wp.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return wp
}

// Handler exposes the router, mainly for tests.
func (wp *WebPublisher) Handler() http.Handler {
	return wp.engine
}

// Start begins serving HTTP in the background. Call Shutdown to stop.
func (wp *WebPublisher) Start() error {
	ln, err := net.Listen("tcp", wp.addr)
	if err != nil {
		return fmt.Errorf("web: failed to listen on %s: %w", wp.addr, err)
	}
	wp.mu.Lock()
	wp.ln = ln
	wp.mu.Unlock()
	go func() {
		wp.logger.Info("web publisher listening", "addr", ln.Addr().String())
		if err := wp.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wp.logger.Error("web publisher error", "error", err)
		}
	}()
	return nil
}

// Addr is the address being served, which differs from the configured one
// when listening on port 0. Before Start it is the configured address.
func (wp *WebPublisher) Addr() string {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.ln == nil {
		return wp.addr
	}
	return wp.ln.Addr().String()
}

// Shutdown gracefully shuts down the HTTP server.
func (wp *WebPublisher) Shutdown(ctx context.Context) error {
	return wp.server.Shutdown(ctx)
}

func (wp *WebPublisher) Publish(_ context.Context, r *report.Report) error {
	wp.mu.Lock()
	wp.latest = r
	wp.mu.Unlock()
	wp.logger.Info("web publisher updated", "report", r.Path)
	return nil
}

func (wp *WebPublisher) current() *report.Report {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.latest
}

func (wp *WebPublisher) handleIndex(c *gin.Context) {
	r := wp.current()
	if r == nil {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(emptyPage))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(buildHTMLBody(r)))
}

func (wp *WebPublisher) handleMarkdown(c *gin.Context) {
	r := wp.current()
	if r == nil {
		c.String(http.StatusNotFound, "no report available yet\n")
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(r.Content))
}

func (wp *WebPublisher) handleJSON(c *gin.Context) {
	r := wp.current()
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report available yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":  title(r),
		"report": r,
	})
}
