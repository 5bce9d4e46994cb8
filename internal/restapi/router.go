// Package restapi exposes the classifier over HTTP with gin, next to the
// gRPC service in package codec.
package restapi

import (
	"errors"
	"net/http"

	"github.com/danielpatrickdp/perceptron/internal/codec"
	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/gin-gonic/gin"
)

// BasePath prefixes every route.
const BasePath = "/api/v1"

// PredictRequest is the body of POST /api/v1/predict.
type PredictRequest struct {
	Inputs []float64 `json:"inputs" binding:"required"`
}

// PredictResponse is the reply of POST /api/v1/predict.
type PredictResponse struct {
	Label perceptron.Label `json:"label"`
}

// #region router
// NewRouter builds a gin engine serving srv's model:
//
//	GET  /api/v1/model    model parameters
//	POST /api/v1/predict  {"inputs": [...]} -> {"label": 1|-1}
//	GET  /healthz
func NewRouter(srv *codec.Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group(BasePath)
	{
		v1.GET("/model", getModel(srv))
		v1.POST("/predict", postPredict(srv))
	}
	return router
}
// #endregion router

// #region handlers
func getModel(srv *codec.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.IndentedJSON(http.StatusOK, srv.Info())
	}
}

func postPredict(srv *codec.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		label, err := srv.Classify(req.Inputs)
		if errors.Is(err, perceptron.ErrInvalidArgument) {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if err != nil {
			c.IndentedJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.IndentedJSON(http.StatusOK, PredictResponse{Label: label})
	}
}
// #endregion handlers
