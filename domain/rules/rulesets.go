package rules

import (
	"errors"
	"strconv"
	"time"

	"fabline/bizerror"
	"fabline/domain/readiness"
	"fabline/event"
	"fabline/idgen"
	"fabline/persistence"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"github.com/sony/sonyflake"
)

var (
	rulesetIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
	itemIdWorker    = sonyflake.NewSonyflake(sonyflake.Settings{})

	// active ruleset is read on every gated transition, cache it briefly
	activeRulesetCache = cache.New(1*time.Minute, 1*time.Minute)

	CreateRulesetFunc   = CreateRuleset
	UpdateRulesetFunc   = UpdateRuleset
	ActivateRulesetFunc = ActivateRuleset
	DetailRulesetFunc   = DetailRuleset
	QueryRulesetsFunc   = QueryRulesets
	ActiveRulesetFunc   = ActiveRuleset
)

const activeRulesetCacheKey = "active"

func CreateRuleset(c *RulesetCreation, s *session.Session) (*Ruleset, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	ruleset := Ruleset{
		ID:   idgen.NextID(rulesetIdWorker),
		Name: c.Name,

		MinAttachmentsForEngineering: c.MinAttachmentsForEngineering,
		MinAttachmentsForProduction:  c.MinAttachmentsForProduction,
		RequireCommentForEngineering: c.RequireCommentForEngineering,
		RequireCommentForProduction:  c.RequireCommentForProduction,

		ExternalJobRules: c.ExternalJobRules,
		ReturnReasons:    c.ReturnReasons,

		CreatorID:   s.Identity.ID,
		CreatorName: s.Identity.Nickname,
		CreateTime:  now,
	}
	if ruleset.ExternalJobRules == nil {
		ruleset.ExternalJobRules = ExternalJobRules{}
	}
	for _, item := range c.ChecklistItems {
		ruleset.ChecklistItems = append(ruleset.ChecklistItems, readiness.ChecklistItem{
			ID: idgen.NextID(itemIdWorker), Label: item.Label, Active: item.Active, RequiredFor: item.RequiredFor,
		})
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ruleset).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeRuleset, ruleset.ID, ruleset.Name, event.EventCategoryCreated,
			nil, &s.Identity, now, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &ruleset, nil
}

func UpdateRuleset(id types.ID, c *RulesetCreation, s *session.Session) (*Ruleset, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	var updated Ruleset
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		origin := Ruleset{}
		if err := tx.Where(&Ruleset{ID: id}).First(&origin).Error; err != nil {
			return err
		}

		items := ChecklistItems{}
		for _, item := range c.ChecklistItems {
			items = append(items, readiness.ChecklistItem{
				ID: idgen.NextID(itemIdWorker), Label: item.Label, Active: item.Active, RequiredFor: item.RequiredFor,
			})
		}
		externalJobRules := c.ExternalJobRules
		if externalJobRules == nil {
			externalJobRules = ExternalJobRules{}
		}

		query := tx.Model(&Ruleset{}).Where(&Ruleset{ID: id}).Update(map[string]interface{}{
			"name":                            c.Name,
			"checklist_items":                 items,
			"min_attachments_for_engineering": c.MinAttachmentsForEngineering,
			"min_attachments_for_production":  c.MinAttachmentsForProduction,
			"require_comment_for_engineering": c.RequireCommentForEngineering,
			"require_comment_for_production":  c.RequireCommentForProduction,
			"external_job_rules":              externalJobRules,
			"return_reasons":                  ReturnReasons(c.ReturnReasons),
		})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(query.RowsAffected, 10))
		}

		if err := tx.Where(&Ruleset{ID: id}).First(&updated).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeRuleset, id, updated.Name, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Name", PropertyDesc: "Name",
				OldValue: origin.Name, OldValueDesc: origin.Name,
				NewValue: updated.Name, NewValueDesc: updated.Name,
			}}, &s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	activeRulesetCache.Delete(activeRulesetCacheKey)
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &updated, nil
}

// ActivateRuleset makes the ruleset the policy in force, only one ruleset is
// active at a time
func ActivateRuleset(id types.ID, s *session.Session) error {
	if !s.Perms.HasAdminRole() {
		return bizerror.ErrForbidden
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		ruleset := Ruleset{}
		if err := tx.Where(&Ruleset{ID: id}).First(&ruleset).Error; err != nil {
			return err
		}
		if err := tx.Model(&Ruleset{}).Where("active = ?", true).Update("active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&Ruleset{}).Where(&Ruleset{ID: id}).Update("active", true).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeRuleset, id, ruleset.Name, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Active", PropertyDesc: "Active",
				OldValue: "false", OldValueDesc: "false", NewValue: "true", NewValueDesc: "true",
			}}, &s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if txErr != nil {
		return txErr
	}

	activeRulesetCache.Delete(activeRulesetCacheKey)
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return nil
}

func DetailRuleset(id types.ID, s *session.Session) (*Ruleset, error) {
	ruleset := Ruleset{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&Ruleset{ID: id}).First(&ruleset).Error; err != nil {
		return nil, err
	}
	return &ruleset, nil
}

func QueryRulesets(s *session.Session) (*[]Ruleset, error) {
	var rulesets []Ruleset
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Order("ID ASC").Find(&rulesets).Error; err != nil {
		return nil, err
	}
	return &rulesets, nil
}

// ActiveRuleset loads the ruleset in force through a short-lived cache
func ActiveRuleset(s *session.Session) (*Ruleset, error) {
	if cached, found := activeRulesetCache.Get(activeRulesetCacheKey); found {
		r, ok := cached.(*Ruleset)
		if ok {
			return r, nil
		}
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	ruleset, err := ActiveRulesetInTx(db)
	if err != nil {
		return nil, err
	}
	activeRulesetCache.Set(activeRulesetCacheKey, ruleset, cache.DefaultExpiration)
	return ruleset, nil
}

// ActiveRulesetInTx reads the ruleset in force inside the caller transaction,
// bypassing the cache so gated transitions see committed policy
func ActiveRulesetInTx(tx *gorm.DB) (*Ruleset, error) {
	ruleset := Ruleset{}
	if err := tx.Where("active = ?", true).First(&ruleset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNoActiveRuleset
		}
		return nil, err
	}
	return &ruleset, nil
}
