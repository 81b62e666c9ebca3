package server

import (
	"net/http"
	"strconv"
	"strings"

	auditdomain "github.com/Thapthai/app-microservice-sub000/internal/audit/domain"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/Thapthai/app-microservice-sub000/pkg/timerange"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListOperationLogs(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	startAt, err := timerange.ParseStart(c.Query("date_from"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	endAt, err := timerange.ParseEnd(c.Query("date_to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	req := auditdomain.ListRequest{
		Pagination: page,
		Operation:  c.Query("operation"),
		StartAt:    startAt,
		EndAt:      endAt,
	}
	if raw := strings.TrimSpace(c.Query("success")); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.Success = &success
	}

	resp, err := s.auditsvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
