package model

// PlanTier 套餐级别
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanBasic      PlanTier = "basic"
	PlanPro        PlanTier = "pro"
	PlanGrowth     PlanTier = "growth"
	PlanEnterprise PlanTier = "enterprise"
)

// Role 功能所属的用户角色
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
)

// FeatureKey 可计量的功能标识
type FeatureKey string

const (
	FeatureRoleSuggestion     FeatureKey = "role_suggestion"
	FeatureInterviewPrep      FeatureKey = "interview_prep"
	FeatureATSAnalyze         FeatureKey = "ats_analyze"
	FeatureResumeGenerate     FeatureKey = "resume_generate"
	FeatureAlternativeRole    FeatureKey = "alternative_role"
	FeatureJobPrediction      FeatureKey = "job_prediction"
	FeatureInterviewQuestions FeatureKey = "interview_questions"
)

// ValidPlan 校验套餐值是否合法
func ValidPlan(p string) bool {
	switch PlanTier(p) {
	case PlanFree, PlanBasic, PlanPro, PlanGrowth, PlanEnterprise:
		return true
	}
	return false
}

// ValidRole 校验角色值是否合法
func ValidRole(r string) bool {
	return Role(r) == RoleStudent || Role(r) == RoleCompany
}
