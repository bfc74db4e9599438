package plan

import (
	"github.com/sakib/jobhive_go_server/internal/model"
)

type limitKey struct {
	tier    model.PlanTier
	role    model.Role
	feature model.FeatureKey
}

// Catalog 套餐限额表，进程启动时构建一次，之后只读
// 计次功能的值为每月调用上限，时长功能的值为可用月数，0 一律表示不可用
type Catalog struct {
	limits   map[limitKey]int
	roles    map[model.FeatureKey]model.Role
	duration map[model.FeatureKey]bool
}

// Default 内置限额表
func Default() *Catalog {
	c := &Catalog{
		limits:   make(map[limitKey]int),
		roles:    make(map[model.FeatureKey]model.Role),
		duration: make(map[model.FeatureKey]bool),
	}

	// 功能归属角色
	c.roles[model.FeatureRoleSuggestion] = model.RoleStudent
	c.roles[model.FeatureInterviewPrep] = model.RoleStudent
	c.roles[model.FeatureATSAnalyze] = model.RoleStudent
	c.roles[model.FeatureResumeGenerate] = model.RoleStudent
	c.roles[model.FeatureAlternativeRole] = model.RoleStudent
	c.roles[model.FeatureJobPrediction] = model.RoleCompany
	c.roles[model.FeatureInterviewQuestions] = model.RoleCompany

	// ats_analyze 按订阅时长计，不按调用次数计
	c.duration[model.FeatureATSAnalyze] = true

	// 学生侧
	c.set(model.PlanFree, model.RoleStudent, model.FeatureRoleSuggestion, 3)
	c.set(model.PlanFree, model.RoleStudent, model.FeatureInterviewPrep, 3)
	c.set(model.PlanFree, model.RoleStudent, model.FeatureResumeGenerate, 1)
	c.set(model.PlanFree, model.RoleStudent, model.FeatureAlternativeRole, 2)

	c.set(model.PlanBasic, model.RoleStudent, model.FeatureRoleSuggestion, 10)
	c.set(model.PlanBasic, model.RoleStudent, model.FeatureInterviewPrep, 15)
	c.set(model.PlanBasic, model.RoleStudent, model.FeatureATSAnalyze, 1)
	c.set(model.PlanBasic, model.RoleStudent, model.FeatureResumeGenerate, 5)
	c.set(model.PlanBasic, model.RoleStudent, model.FeatureAlternativeRole, 5)

	c.set(model.PlanPro, model.RoleStudent, model.FeatureRoleSuggestion, 30)
	c.set(model.PlanPro, model.RoleStudent, model.FeatureInterviewPrep, 50)
	c.set(model.PlanPro, model.RoleStudent, model.FeatureATSAnalyze, 3)
	c.set(model.PlanPro, model.RoleStudent, model.FeatureResumeGenerate, 20)
	c.set(model.PlanPro, model.RoleStudent, model.FeatureAlternativeRole, 15)

	// 企业侧
	c.set(model.PlanFree, model.RoleCompany, model.FeatureJobPrediction, 3)
	c.set(model.PlanFree, model.RoleCompany, model.FeatureInterviewQuestions, 3)

	c.set(model.PlanGrowth, model.RoleCompany, model.FeatureJobPrediction, 25)
	c.set(model.PlanGrowth, model.RoleCompany, model.FeatureInterviewQuestions, 30)

	c.set(model.PlanEnterprise, model.RoleCompany, model.FeatureJobPrediction, 100)
	c.set(model.PlanEnterprise, model.RoleCompany, model.FeatureInterviewQuestions, 100)

	return c
}

func (c *Catalog) set(tier model.PlanTier, role model.Role, feature model.FeatureKey, limit int) {
	c.limits[limitKey{tier, role, feature}] = limit
}

// LimitFor 查询限额，未定义的组合返回 0
func (c *Catalog) LimitFor(tier model.PlanTier, role model.Role, feature model.FeatureKey) int {
	return c.limits[limitKey{tier, role, feature}]
}

// Role 功能归属的角色
func (c *Catalog) Role(feature model.FeatureKey) (model.Role, bool) {
	role, ok := c.roles[feature]
	return role, ok
}

// DurationBased 是否为时长计费功能
func (c *Catalog) DurationBased(feature model.FeatureKey) bool {
	return c.duration[feature]
}

// Features 某个角色下的全部功能
func (c *Catalog) Features(role model.Role) []model.FeatureKey {
	var keys []model.FeatureKey
	for feature, r := range c.roles {
		if r == role {
			keys = append(keys, feature)
		}
	}
	return keys
}
