package api

import (
	"net/http"
	"strconv"
	"strings"

	"cosmossdk.io/math"
	"github.com/gin-gonic/gin"

	"github.com/swapforge/swapforge/x/amm/types"
)

// ErrorResponse is the uniform error payload, carrying a recovery hint when
// one is registered for the underlying sentinel.
type ErrorResponse struct {
	Error    string `json:"error"`
	Recovery string `json:"recovery,omitempty"`
}

func errorJSON(c *gin.Context, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if suggestion := types.GetRecoverySuggestion(err); suggestion != "" {
		resp.Recovery = suggestion
	}
	c.JSON(status, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "pools": len(s.keeper.GetAllPools(c.Request.Context()))})
}

func (s *Server) handleGetPools(c *gin.Context) {
	pools := s.keeper.GetAllPools(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"pools": pools, "count": len(pools)})
}

func (s *Server) handleGetPool(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, types.ErrPoolNotFound.Wrap("pool id must be numeric"))
		return
	}
	pool, err := s.keeper.GetPool(c.Request.Context(), id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

func (s *Server) handleGetCumulativePrices(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, types.ErrPoolNotFound.Wrap("pool id must be numeric"))
		return
	}
	priceA, priceB, last, err := s.keeper.GetCumulativePrices(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cumulative_price_a": priceA.String(),
		"cumulative_price_b": priceB.String(),
		"last_update_unix":   last,
	})
}

// handleQuoteOut quotes an exact-input trade along ?path=a,b,c for
// ?amount_in=N.
func (s *Server) handleQuoteOut(c *gin.Context) {
	amountIn, ok := parseAmount(c, "amount_in")
	if !ok {
		return
	}
	path := parsePath(c)
	amounts, err := s.keeper.GetAmountsOut(c.Request.Context(), amountIn, path)
	if err != nil {
		errorJSON(c, quoteStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":       path,
		"amounts":    amountStrings(amounts),
		"amount_out": amounts[len(amounts)-1].String(),
	})
}

// handleQuoteIn quotes an exact-output trade along ?path=a,b,c for
// ?amount_out=N.
func (s *Server) handleQuoteIn(c *gin.Context) {
	amountOut, ok := parseAmount(c, "amount_out")
	if !ok {
		return
	}
	path := parsePath(c)
	amounts, err := s.keeper.GetAmountsIn(c.Request.Context(), amountOut, path)
	if err != nil {
		errorJSON(c, quoteStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":      path,
		"amounts":   amountStrings(amounts),
		"amount_in": amounts[0].String(),
	})
}

// handleBestRoute finds the highest-output route for
// ?amount_in=N&asset_in=a&asset_out=b.
func (s *Server) handleBestRoute(c *gin.Context) {
	amountIn, ok := parseAmount(c, "amount_in")
	if !ok {
		return
	}
	path, amounts, err := s.keeper.FindBestRoute(c.Request.Context(), amountIn,
		c.Query("asset_in"), c.Query("asset_out"))
	if err != nil {
		errorJSON(c, quoteStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":       path,
		"amounts":    amountStrings(amounts),
		"amount_out": amounts[len(amounts)-1].String(),
	})
}

func parseAmount(c *gin.Context, key string) (math.Int, bool) {
	raw := c.Query(key)
	amount, ok := math.NewIntFromString(raw)
	if !ok || !amount.IsPositive() {
		errorJSON(c, http.StatusBadRequest,
			types.ErrInvalidAmount.Wrapf("%s must be a positive integer, got %q", key, raw))
		return math.Int{}, false
	}
	return amount, true
}

func parsePath(c *gin.Context) []string {
	raw := c.Query("path")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func amountStrings(amounts []math.Int) []string {
	out := make([]string, len(amounts))
	for i, a := range amounts {
		out[i] = a.String()
	}
	return out
}

func quoteStatus(err error) int {
	switch {
	case types.ErrPoolNotFound.Is(err), types.ErrInvalidPath.Is(err):
		return http.StatusNotFound
	case types.ErrInvalidAmount.Is(err), types.ErrInsufficientInputAmount.Is(err),
		types.ErrInsufficientOutputAmount.Is(err):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
