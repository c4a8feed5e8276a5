package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/casualfootball/cffa-backend/utils"
)

// bindJSON binds the request body, answering 400 when it does not fit
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		appErr := utils.NewBadRequestError(utils.ErrInvalidRequest)
		appErr.Details = err.Error()
		utils.HandleError(c, appErr)
		return false
	}
	return true
}
