// Package api exposes the trigger/query endpoints over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Francocima/master-skills-scraper/internal/coordinator"
	"github.com/Francocima/master-skills-scraper/internal/scraper"
	"github.com/Francocima/master-skills-scraper/internal/store"
)

// Caps are the default limits applied when a request leaves its own
// caps unset. Zero means uncapped.
type Caps struct {
	MaxPages   int
	MaxResults int
}

type Server struct {
	coord  *coordinator.Coordinator
	store  store.Store
	caps   Caps
	router *gin.Engine
}

func NewServer(coord *coordinator.Coordinator, st store.Store, caps Caps) *Server {
	s := &Server{
		coord: coord,
		store: st,
		caps:  caps,
	}

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Seek job scraper API is running!",
			"status":  "healthy",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().Format(time.RFC3339)})
	})

	r.POST("/api/scrape", s.handleScrape)
	r.GET("/api/runs/:id", s.handleRunStatus)
	r.POST("/api/runs/:id/cancel", s.handleCancel)
	r.GET("/api/jobs", s.handleJobs)

	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Run(addr string) error { return s.router.Run(addr) }

type scrapeRequest struct {
	Keywords     string `json:"keywords" binding:"required"`
	Location     string `json:"location"`
	MaxPages     int    `json:"max_pages"`
	MaxResults   int    `json:"max_results"`
	PostedWithin string `json:"posted_within"`
}

// handleScrape starts a run. With ?wait=true it blocks until the run
// is terminal and returns the full snapshot; otherwise it answers 202
// with the run id straight away.
func (s *Server) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := scraper.Query{
		Keywords:     req.Keywords,
		Location:     req.Location,
		MaxPages:     req.MaxPages,
		MaxResults:   req.MaxResults,
		PostedWithin: req.PostedWithin,
	}
	if q.MaxPages == 0 {
		q.MaxPages = s.caps.MaxPages
	}
	if q.MaxResults == 0 {
		q.MaxResults = s.caps.MaxResults
	}

	id, err := s.coord.Start(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if c.Query("wait") == "true" {
		snap, err := s.coord.Wait(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error(), "run": snap})
			return
		}
		c.JSON(http.StatusOK, gin.H{"run": snap})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"run_id": id})
}

func (s *Server) handleRunStatus(c *gin.Context) {
	snap, ok := s.coord.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": snap})
}

func (s *Server) handleCancel(c *gin.Context) {
	if !s.coord.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelling"})
}

// handleJobs lists stored records, optionally filtered by keywords and
// location.
func (s *Server) handleJobs(c *gin.Context) {
	jobs, err := s.store.List(c.Request.Context(), store.Filter{
		Keywords: c.Query("keywords"),
		Location: c.Query("location"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if jobs == nil {
		jobs = []scraper.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(jobs), "jobs": jobs})
}
