package handler

import (
	"Inkwell/internal/pkg/response"
	"Inkwell/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam 解析路径中的正整数 ID，失败时直接写回参数错误
func parseIDParam(c *gin.Context, key string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, service.ErrParamInvalid)
		return 0, false
	}
	return id, true
}
