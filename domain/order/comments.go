package order

import (
	"fabline/domain"
	"fabline/event"
	"fabline/idgen"
	"fabline/persistence"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	commentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateCommentFunc = CreateComment
	ListCommentsFunc  = ListComments
)

func CreateComment(c *domain.CommentCreation, s *session.Session) (*domain.Comment, error) {
	comment := domain.Comment{
		ID:          idgen.NextID(commentIdWorker),
		OrderID:     c.OrderID,
		Content:     c.Content,
		CreatorID:   s.Identity.ID,
		CreatorName: s.Identity.Nickname,
		CreatorRole: s.Role(),
		CreateTime:  types.CurrentTimestamp(),
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		detail, err := loadOrderDetail(tx, c.OrderID)
		if err != nil {
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		ev, err = CreateOrderExtensionUpdatedEvent(&detail.Order,
			[]event.UpdatedProperty{{
				PropertyName: "Comments", PropertyDesc: "Comments",
				NewValue: comment.Content, NewValueDesc: comment.Content,
			}},
			&s.Identity, comment.CreateTime, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &comment, nil
}

func ListComments(orderId types.ID, s *session.Session) ([]domain.Comment, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	if _, err := findOrder(db, orderId); err != nil {
		return nil, err
	}

	comments := []domain.Comment{}
	if err := db.Where(&domain.Comment{OrderID: orderId}).Order("create_time ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
