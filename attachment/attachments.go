package attachment

import (
	"io"
	"io/ioutil"

	"fabline/bizerror"
	"fabline/client/oss"
	"fabline/domain"
	"fabline/event"
	"fabline/idgen"
	"fabline/persistence"
	"fabline/session"

	aliyun "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	attachmentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateAttachmentFunc   = CreateAttachment
	ListAttachmentsFunc    = ListAttachments
	DownloadAttachmentFunc = DownloadAttachment
	DeleteAttachmentFunc   = DeleteAttachment
)

type AttachmentCreation struct {
	OwnerType string   `form:"ownerType" binding:"required,oneof=ORDER EXTERNAL_JOB"`
	OwnerID   types.ID `form:"ownerId" binding:"required"`
	Category  string   `form:"category" binding:"omitempty,lte=32"`
}

// CreateAttachment stores the file bytes in object storage first, the record
// row is created only when the upload succeeded.
func CreateAttachment(c *AttachmentCreation, fileName string, r io.Reader, s *session.Session) (*domain.Attachment, error) {
	record := domain.Attachment{
		ID:        idgen.NextID(attachmentIdWorker),
		OwnerType: c.OwnerType,
		OwnerID:   c.OwnerID,
		Category:  c.Category,
		FileName:  fileName,

		CreatorID:   s.Identity.ID,
		CreatorName: s.Identity.Nickname,
		CreatorRole: s.Role(),
		CreateTime:  types.CurrentTimestamp(),
	}
	record.ObjectKey = "attachments/" + record.ID.String() + "/" + fileName

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := checkOwnerExists(db, c.OwnerType, c.OwnerID); err != nil {
		return nil, err
	}

	if err := oss.PutObjectFunc(record.ObjectKey, r, s); err != nil {
		return nil, err
	}

	var ev *event.EventRecord
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(ownerSourceType(record.OwnerType), record.OwnerID, record.FileName,
			event.EventCategoryExtensionUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Attachments", PropertyDesc: "Attachments",
				NewValue: record.FileName, NewValueDesc: record.FileName,
			}},
			&s.Identity, record.CreateTime, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &record, nil
}

func ListAttachments(ownerType string, ownerId types.ID, s *session.Session) ([]domain.Attachment, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	records := []domain.Attachment{}
	err := db.Where(&domain.Attachment{OwnerType: ownerType, OwnerID: ownerId}).
		Order("create_time ASC, id ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func DownloadAttachment(id types.ID, s *session.Session) (*domain.Attachment, []byte, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	record := domain.Attachment{}
	if err := db.Where(&domain.Attachment{ID: id}).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil, bizerror.ErrNotFound
		}
		return nil, nil, err
	}

	r, err := oss.GetObjectFunc(record.ObjectKey, s)
	if err != nil {
		if serErr, ok := err.(aliyun.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, nil, bizerror.ErrNotFound
		}
		return nil, nil, err
	}
	defer r.Close()

	bytes, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	return &record, bytes, nil
}

// DeleteAttachment removes the record. The uploader or an admin may delete,
// object storage is cleaned up after the record is gone.
func DeleteAttachment(id types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	record := domain.Attachment{}
	if err := db.Where(&domain.Attachment{ID: id}).First(&record).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return bizerror.ErrNotFound
		}
		return err
	}
	if record.CreatorID != s.Identity.ID && !s.Perms.HasAdminRole() {
		return bizerror.ErrForbidden
	}

	if err := db.Delete(&domain.Attachment{}, "id = ?", id).Error; err != nil {
		return err
	}
	return oss.DeleteObjectFunc(record.ObjectKey, s)
}

func checkOwnerExists(db *gorm.DB, ownerType string, ownerId types.ID) error {
	var err error
	switch ownerType {
	case domain.AttachmentOwnerOrder:
		err = db.Where(&domain.Order{ID: ownerId}).First(&domain.Order{}).Error
	case domain.AttachmentOwnerExternalJob:
		err = db.Where(&domain.ExternalJob{ID: ownerId}).First(&domain.ExternalJob{}).Error
	default:
		return bizerror.ErrNotFound
	}
	if gorm.IsRecordNotFoundError(err) {
		return bizerror.ErrNotFound
	}
	return err
}

func ownerSourceType(ownerType string) string {
	if ownerType == domain.AttachmentOwnerExternalJob {
		return event.SourceTypeExternalJob
	}
	return event.SourceTypeOrder
}
