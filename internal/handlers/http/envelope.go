package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// response is the uniform envelope every JSON endpoint emits. Application
// failures keep HTTP 200 and carry a non-200 code inside the envelope,
// matching what the console's transport expects.
type response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, response{Code: 200, Msg: "success", Data: data})
}

func respondFail(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, response{Code: code, Msg: msg})
}
