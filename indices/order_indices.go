package indices

import (
	"fmt"

	"fabline/client/es"
	"fabline/domain"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	OrderIndexName = "orders"
)

type OrderDocument struct {
	domain.OrderDetail
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexOrders(orders []domain.OrderDetail, s *session.Session) error {
	docs := make([]OrderDocument, 0, len(orders))
	for _, order := range orders {
		docs = append(docs, OrderDocument{OrderDetail: order})
	}

	if err := saveOrderDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveOrderDocuments(docs []OrderDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(OrderIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index order %d %s %s\n", doc.ID, doc.OrderNumber, err)
		} else {
			logrus.Infof("index order %d %s successfully\n", doc.ID, doc.OrderNumber)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
