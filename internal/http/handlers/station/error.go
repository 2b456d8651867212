package station

import (
	handlershared "github.com/fenjian-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getOperatorID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "operator_id")
}
