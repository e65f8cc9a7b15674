package usecase_test

import "intervals/internal/modules/workout/domain"

func domainPlan(name string) domain.Plan {
	plan := domain.DefaultPlan()
	plan.Name = name
	return plan
}
