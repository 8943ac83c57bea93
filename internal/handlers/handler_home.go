package handlers

import (
	"net/http"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

type serviceInfo struct {
	Service         string   `json:"service"`
	DisplayCurrency string   `json:"displayCurrency"`
	Currencies      []string `json:"currencies"`
}

// getHome godoc
// @Summary Show the status of server.
// @Description Reports the service name, the display currency and the supported currencies.
// @Tags root
// @Produce json
// @Success 200 {object} serviceInfo
// @Router / [get]
func getHome(displayCurrency string) gin.HandlerFunc {
	codes := make([]string, 0, len(domain.AllCurrencies()))
	for _, cur := range domain.AllCurrencies() {
		codes = append(codes, string(cur))
	}
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, serviceInfo{
			Service:         "coinvest ledger",
			DisplayCurrency: displayCurrency,
			Currencies:      codes,
		})
	}
}
