package handler

type ContextKey string

var (
	RoleCtxKey      ContextKey = "role"
	SubCtxKey       ContextKey = "sub"
	MyInfoCtx       ContextKey = "myInfo"
	UserInfoCtx     ContextKey = "userInfo"
	OrganizationCtx ContextKey = "organization"
	FacilityCtx     ContextKey = "facility"
	DefinitionCtx   ContextKey = "definition"
	ShiftCtx        ContextKey = "shift"
	SwapRequestCtx  ContextKey = "swapRequest"
)
