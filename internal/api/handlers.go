package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/errors"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code onto an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrUnknownCluster:
		return http.StatusNotFound
	case errors.ErrConnectionConfig:
		return http.StatusServiceUnavailable
	case errors.ErrFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(code), errorBody{Error: errorDetail{Code: code, Message: err.Error()}})
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: errorDetail{Code: "NOT_FOUND", Message: "no route for " + c.Request.URL.Path}})
}

func (s *Server) listClusters(c *gin.Context) {
	clusters, _, err := s.dashboard.ListClusters(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, clusters)
}

// nodes serves both /api/nodes (active context) and /api/clusters/:name/nodes.
func (s *Server) nodes(c *gin.Context) {
	nodes, err := s.dashboard.GetNodesWithPods(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

func (s *Server) summary(c *gin.Context) {
	summary, err := s.dashboard.GetClusterSummary(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
