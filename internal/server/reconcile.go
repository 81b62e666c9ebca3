package server

import (
	"net/http"
	"strconv"
	"strings"

	reconciledomain "github.com/Thapthai/app-microservice-sub000/internal/reconcile/domain"
	"github.com/Thapthai/app-microservice-sub000/pkg/db/pagination"
	"github.com/Thapthai/app-microservice-sub000/pkg/timerange"
	"github.com/gin-gonic/gin"
)

func (s *Server) CompareDispensedVsUsage(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	dateFrom, err := timerange.ParseStart(c.Query("start_date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	dateTo, err := timerange.ParseEnd(c.Query("end_date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var itemTypeID int64
	if raw := strings.TrimSpace(c.Query("item_type_id")); raw != "" {
		itemTypeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || itemTypeID <= 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	resp, err := s.reconcilesvc.Compare(c.Request.Context(), reconciledomain.CompareRequest{
		Pagination:     page,
		ItemCode:       c.Query("item_code"),
		ItemTypeID:     itemTypeID,
		DepartmentCode: c.Query("department_code"),
		DateFrom:       dateFrom,
		DateTo:         dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
