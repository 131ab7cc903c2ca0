package externaljob

import (
	"errors"
	"strconv"

	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/flow"
	"fabline/domain/rules"
	"fabline/domain/state"
	"fabline/event"
	"fabline/idgen"
	"fabline/persistence"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	jobIdWorker          = sonyflake.NewSonyflake(sonyflake.Settings{})
	statusRecordIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateExternalJobFunc        = CreateExternalJob
	DetailExternalJobFunc        = DetailExternalJob
	ListExternalJobsFunc         = ListExternalJobs
	UpdateExternalJobFunc        = UpdateExternalJob
	TransitExternalJobStatusFunc = TransitExternalJobStatus
	QueryStatusHistoryFunc       = QueryStatusHistory
	QueryOverdueExternalJobsFunc = QueryOverdueExternalJobs
)

// CreateExternalJob creates a sub-workflow job under an existing order,
// starting at REQUESTED with an empty history.
func CreateExternalJob(c *domain.ExternalJobCreation, s *session.Session) (*domain.ExternalJobDetail, error) {
	job := domain.ExternalJob{
		ID:                  idgen.NextID(jobIdWorker),
		OrderID:             c.OrderID,
		PartnerID:           c.PartnerID,
		PartnerName:         c.PartnerName,
		ExternalOrderNumber: c.ExternalOrderNumber,
		Quantity:            c.Quantity,
		DueDate:             c.DueDate,
		Status:              state.ExternalJobRequested,

		CreatorID:   s.Identity.ID,
		CreatorName: s.Identity.Nickname,
		CreateTime:  types.CurrentTimestamp(),
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(&domain.Order{ID: c.OrderID}).First(&domain.Order{}).Error
		if gorm.IsRecordNotFoundError(err) {
			return bizerror.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Create(&job).Error; err != nil {
			return err
		}
		ev, err = createExternalJobEvent(&job, event.EventCategoryCreated, nil, &s.Identity, job.CreateTime, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &domain.ExternalJobDetail{
		ExternalJob:   job,
		Attachments:   []domain.Attachment{},
		StatusHistory: []domain.ExternalJobStatusRecord{},
	}, nil
}

func DetailExternalJob(id types.ID, s *session.Session) (*domain.ExternalJobDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return loadExternalJobDetail(db, id)
}

func ListExternalJobs(orderId types.ID, s *session.Session) ([]domain.ExternalJob, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	jobs := []domain.ExternalJob{}
	err := db.Where(&domain.ExternalJob{OrderID: orderId}).
		Order("create_time ASC, id ASC").Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func UpdateExternalJob(id types.ID, u *domain.ExternalJobUpdating, s *session.Session) (*domain.ExternalJob, error) {
	var job *domain.ExternalJob
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		origin, err := findExternalJob(tx, id)
		if err != nil {
			return err
		}

		query := tx.Model(&domain.ExternalJob{}).Where(&domain.ExternalJob{ID: id}).
			Update(map[string]interface{}{
				"partner_name":          u.PartnerName,
				"external_order_number": u.ExternalOrderNumber,
				"quantity":              u.Quantity,
				"due_date":              u.DueDate,
			})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(query.RowsAffected, 10))
		}

		ev, err = createExternalJobEvent(origin, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "PartnerName", PropertyDesc: "PartnerName",
				OldValue: origin.PartnerName, OldValueDesc: origin.PartnerName,
				NewValue: u.PartnerName, NewValueDesc: u.PartnerName,
			}},
			&s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		job, err = findExternalJob(tx, id)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return job, nil
}

// TransitExternalJobStatus moves a job to the target status under the active
// ruleset's attachment minimum. Same concurrency guard as the order
// lifecycle: the update is matched against the origin status.
func TransitExternalJobStatus(u *domain.ExternalJobStatusUpdating, s *session.Session) (*domain.ExternalJobDetail, error) {
	var next *domain.ExternalJobDetail
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		detail, err := loadExternalJobDetail(tx, u.ExternalJobID)
		if err != nil {
			return err
		}
		ruleset, err := rules.ActiveRulesetInTx(tx)
		if err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		applied, record, err := flow.ApplyExternalJobTransition(detail, u.Status, ruleset, s, now,
			idgen.NextID(statusRecordIdWorker))
		if err != nil {
			return err
		}

		query := tx.Model(&domain.ExternalJob{}).
			Where(&domain.ExternalJob{ID: detail.ID, Status: detail.Status}).
			Update(map[string]interface{}{
				"status":                 applied.Status,
				"status_changed_by":      applied.StatusChangedBy,
				"status_changed_by_name": applied.StatusChangedByName,
				"status_changed_by_role": applied.StatusChangedByRole,
				"status_change_time":     applied.StatusChangeTime,
			})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(query.RowsAffected, 10))
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}

		ev, err = createExternalJobEvent(&detail.ExternalJob, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Status", PropertyDesc: "Status",
				OldValue: string(detail.Status), OldValueDesc: string(detail.Status),
				NewValue: string(applied.Status), NewValueDesc: string(applied.Status),
			}},
			&s.Identity, now, tx)
		if err != nil {
			return err
		}

		next = applied
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return next, nil
}

func QueryStatusHistory(jobId types.ID, s *session.Session) (*[]domain.ExternalJobStatusRecord, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	if _, err := findExternalJob(db, jobId); err != nil {
		return nil, err
	}

	records := []domain.ExternalJobStatusRecord{}
	err := db.Where(&domain.ExternalJobStatusRecord{ExternalJobID: jobId}).
		Order("change_time ASC, id ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return &records, nil
}

// QueryOverdueExternalJobs lists unsettled jobs whose due date has passed.
func QueryOverdueExternalJobs(s *session.Session) ([]domain.ExternalJob, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	jobs := []domain.ExternalJob{}
	err := db.Where("due_date IS NOT NULL AND due_date < ? AND status NOT IN (?)",
		types.CurrentTimestamp(),
		[]state.ExternalJobStatus{state.ExternalJobDelivered, state.ExternalJobApproved, state.ExternalJobCancelled}).
		Order("due_date ASC, id ASC").Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func findExternalJob(tx *gorm.DB, id types.ID) (*domain.ExternalJob, error) {
	job := domain.ExternalJob{}
	if err := tx.Where(&domain.ExternalJob{ID: id}).First(&job).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func loadExternalJobDetail(tx *gorm.DB, id types.ID) (*domain.ExternalJobDetail, error) {
	job, err := findExternalJob(tx, id)
	if err != nil {
		return nil, err
	}
	detail := domain.ExternalJobDetail{ExternalJob: *job}

	detail.Attachments = []domain.Attachment{}
	err = tx.Where(&domain.Attachment{OwnerType: domain.AttachmentOwnerExternalJob, OwnerID: id}).
		Order("create_time ASC, id ASC").Find(&detail.Attachments).Error
	if err != nil {
		return nil, err
	}

	detail.StatusHistory = []domain.ExternalJobStatusRecord{}
	err = tx.Where(&domain.ExternalJobStatusRecord{ExternalJobID: id}).
		Order("change_time ASC, id ASC").Find(&detail.StatusHistory).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func createExternalJobEvent(job *domain.ExternalJob, category event.EventCategory,
	updates []event.UpdatedProperty, identity *session.Identity,
	timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {

	desc := job.PartnerName
	if job.ExternalOrderNumber != "" {
		desc = desc + "/" + job.ExternalOrderNumber
	}
	return event.CreateEvent(event.SourceTypeExternalJob, job.ID, desc, category, updates, identity, timestamp, db)
}
