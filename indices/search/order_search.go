package search

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"fabline/bizerror"
	"fabline/client/es"
	"fabline/domain"
	"fabline/indices"
	"fabline/misc"
	"fabline/session"

	"github.com/gin-gonic/gin"
)

var (
	SearchOrdersFunc = SearchOrders

	PathOrderSearch = "/v1/order-search"
)

func SearchOrders(q domain.OrderQuery, s *session.Session) ([]domain.OrderDetail, error) {
	/*
		{
			"query": {
				"bool": {
					"filter": [
						{"match": {"name": {"query": "xxx", "operator": "AND"}}},
						{"terms": {"status": ["DRAFT"]}}
					]
				}
			},
			"size": 10000,
			"sort": [{"createTime": {"order": "asc"}}]
		}
	*/
	filters := make([]es.H, 0, 2)
	if q.Name != "" {
		filters = append(filters, es.H{"match": es.H{"name": es.H{"query": q.Name, "operator": "AND"}}})
	}
	if len(q.Statuses) > 0 {
		filters = append(filters, es.H{"terms": es.H{"status": q.Statuses}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "asc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.OrderIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	details := make([]domain.OrderDetail, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		detail := domain.OrderDetail{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&detail); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		details = append(details, detail)
	}
	return details, nil
}

func RegisterOrderSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathOrderSearch, middleWares...)
	g.GET("", handleSearchOrders)
}

func handleSearchOrders(c *gin.Context) {
	query := domain.OrderQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	details, err := SearchOrdersFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: details, Total: uint64(len(details))})
}
