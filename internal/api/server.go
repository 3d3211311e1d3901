// Package api exposes the verification pipeline over HTTP. One POST endpoint
// accepts a multipart scan upload plus report text; errors carry the pipeline
// stage they occurred in so clients can distinguish bad input from internal
// failures.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"radverify/internal/imaging"
	"radverify/internal/report"
	"radverify/internal/verify"
	"radverify/internal/version"
)

// Server wraps the gin router around one pipeline instance.
type Server struct {
	pipeline    *verify.Pipeline
	log         *zap.Logger
	maxUploadMB int
	router      *gin.Engine
}

// Options configures the HTTP server.
type Options struct {
	Pipeline    *verify.Pipeline
	Logger      *zap.Logger
	MaxUploadMB int
}

// NewServer builds the router and its routes.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 10
	}

	s := &Server{
		pipeline:    opts.Pipeline,
		log:         opts.Logger,
		maxUploadMB: opts.MaxUploadMB,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = int64(opts.MaxUploadMB) << 20

	router.GET("/health", s.handleHealth)
	router.POST("/verify", s.handleVerify)

	s.router = router
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

// handleVerify accepts a multipart form with a "scan" file and a "report"
// text field and runs the full pipeline.
func (s *Server) handleVerify(c *gin.Context) {
	fileHeader, err := c.FormFile("scan")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "missing scan file upload",
			"stage": verify.StageInput,
		})
		return
	}
	if fileHeader.Size > int64(s.maxUploadMB)<<20 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "scan upload exceeds size limit",
			"stage": verify.StageInput,
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "failed to open scan upload",
			"stage": verify.StageInput,
		})
		return
	}
	defer f.Close()

	imageData, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "failed to read scan upload",
			"stage": verify.StageInput,
		})
		return
	}

	reportText := c.PostForm("report")

	result, err := s.pipeline.Run(c.Request.Context(), fileHeader.Filename, imageData, reportText)
	if err != nil {
		status, stage := classifyError(err)
		c.JSON(status, gin.H{"error": err.Error(), "stage": stage})
		return
	}

	c.JSON(http.StatusOK, result)
}

// classifyError maps pipeline failures to HTTP status codes. Input validation
// problems are the client's fault; everything else is internal.
func classifyError(err error) (int, string) {
	stage := ""
	var se *verify.StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}

	var invalid *imaging.InvalidInputError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest, stage
	}
	var empty report.EmptyReportError
	if errors.As(err, &empty) {
		return http.StatusBadRequest, stage
	}
	return http.StatusInternalServerError, stage
}
