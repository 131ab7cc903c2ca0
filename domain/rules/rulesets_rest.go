package rules

import (
	"errors"
	"net/http"

	"fabline/bizerror"
	"fabline/misc"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathRulesets = "/v1/rulesets"

func RegisterRulesetsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRulesets, middleWares...)
	g.GET("", handleQueryRulesets)
	g.POST("", handleCreateRuleset)
	g.GET(":id", handleDetailRuleset)
	g.PUT(":id", handleUpdateRuleset)
	g.POST(":id/activation", handleActivateRuleset)

	a := r.Group("/v1/active-ruleset", middleWares...)
	a.GET("", handleActiveRuleset)
}

func handleQueryRulesets(c *gin.Context) {
	rulesets, err := QueryRulesetsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: rulesets, Total: uint64(len(*rulesets))})
}

func handleCreateRuleset(c *gin.Context) {
	creation := RulesetCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	ruleset, err := CreateRulesetFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, ruleset)
}

func handleDetailRuleset(c *gin.Context) {
	id := parseId(c)
	ruleset, err := DetailRulesetFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, ruleset)
}

func handleUpdateRuleset(c *gin.Context) {
	id := parseId(c)
	updating := RulesetCreation{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	ruleset, err := UpdateRulesetFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, ruleset)
}

func handleActivateRuleset(c *gin.Context) {
	id := parseId(c)
	if err := ActivateRulesetFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleActiveRuleset(c *gin.Context) {
	ruleset, err := ActiveRulesetFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, ruleset)
}

func parseId(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}
