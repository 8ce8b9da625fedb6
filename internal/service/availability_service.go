package service

import (
	"context"

	"go-commerce-core/internal/availability"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"

	"github.com/MonkyMars/gecho"
)

type CreateRuleInput struct {
	Operator   string `json:"operator" validate:"required,avail_op"`
	Threshold  int    `json:"threshold"`
	Label      string `json:"label" validate:"required,max=100"`
	Color      string `json:"color" validate:"omitempty,hexcolor"`
	SupplierID *uint  `json:"supplier_id"`
	SortOrder  *int   `json:"sort_order" validate:"omitempty,min=0"`
}

type AvailabilityService interface {
	// Classify evaluates quantity against the current rule set.
	Classify(ctx context.Context, quantity int, supplierID *uint) (*model.AvailabilityRule, error)
	// Classifier binds one rule set for the duration of a call.
	Classifier(ctx context.Context) (*availability.Classifier, error)
	ListRules(ctx context.Context) ([]model.AvailabilityRule, error)
	CreateRule(ctx context.Context, input CreateRuleInput) (*model.AvailabilityRule, error)
	DeleteRule(ctx context.Context, id uint) error
}

type availabilityService struct {
	ruleRepo repository.AvailabilityRepository
	cache    availability.RuleCache
	logger   *gecho.Logger
}

func NewAvailabilityService(ruleRepo repository.AvailabilityRepository, cache availability.RuleCache, logger *gecho.Logger) AvailabilityService {
	if cache == nil {
		cache = availability.NoCache{}
	}
	return &availabilityService{ruleRepo: ruleRepo, cache: cache, logger: logger}
}

// rules reads through the cache. A failing cache degrades to the store.
func (s *availabilityService) rules(ctx context.Context) ([]model.AvailabilityRule, error) {
	rules, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("Availability rule cache read failed", gecho.Field("error", err))
	} else if ok {
		return rules, nil
	}

	rules, err = s.ruleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, rules); err != nil {
		s.logger.Warn("Availability rule cache write failed", gecho.Field("error", err))
	}
	return rules, nil
}

func (s *availabilityService) Classify(ctx context.Context, quantity int, supplierID *uint) (*model.AvailabilityRule, error) {
	rules, err := s.rules(ctx)
	if err != nil {
		return nil, err
	}
	return availability.Classify(quantity, rules, supplierID), nil
}

func (s *availabilityService) Classifier(ctx context.Context) (*availability.Classifier, error) {
	rules, err := s.rules(ctx)
	if err != nil {
		return nil, err
	}
	return availability.NewClassifier(rules), nil
}

func (s *availabilityService) ListRules(ctx context.Context) ([]model.AvailabilityRule, error) {
	return s.ruleRepo.FindAll(ctx)
}

func (s *availabilityService) CreateRule(ctx context.Context, input CreateRuleInput) (*model.AvailabilityRule, error) {
	if err := validateInput("availability rule", input); err != nil {
		return nil, err
	}

	rule := &model.AvailabilityRule{
		Operator:   input.Operator,
		Threshold:  input.Threshold,
		Label:      input.Label,
		Color:      input.Color,
		SupplierID: input.SupplierID,
	}
	if input.SortOrder != nil {
		rule.SortOrder = *input.SortOrder
	} else {
		max, err := s.ruleRepo.MaxSortOrder(ctx)
		if err != nil {
			return nil, err
		}
		rule.SortOrder = max + 1
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("Availability rule created",
		gecho.Field("rule_id", rule.ID),
		gecho.Field("operator", rule.Operator),
		gecho.Field("threshold", rule.Threshold),
	)
	return rule, nil
}

func (s *availabilityService) DeleteRule(ctx context.Context, id uint) error {
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("Availability rule deleted", gecho.Field("rule_id", id))
	return nil
}

func (s *availabilityService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("Availability rule cache invalidation failed", gecho.Field("error", err))
	}
}
